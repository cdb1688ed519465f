// Copyright 2016 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pingcap-incubator/tinygraph/pkg/grpcutil"
	"github.com/pingcap/log"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultEndpoints      = "127.0.0.1:9080"
	defaultRequestTimeout = 10 * time.Second
	defaultLogLevel       = "warn"
)

// Config is the graph client configuration.
type Config struct {
	*pflag.FlagSet `toml:"-" json:"-"`

	configFile string

	// Endpoints is a comma separated list of server addresses.
	Endpoints string `toml:"endpoints" json:"endpoints"`

	// RequestTimeout bounds every command run by the CLI.
	RequestTimeout Duration `toml:"request-timeout" json:"request-timeout"`

	// RateLimit caps requests per second of the session, 0 disables it.
	RateLimit float64 `toml:"rate-limit" json:"rate-limit"`
	RateBurst int64   `toml:"rate-burst" json:"rate-burst"`

	Auth AuthConfig `toml:"auth" json:"auth"`

	Security SecurityConfig `toml:"security" json:"security"`

	Log log.Config `toml:"log" json:"log"`

	// WarningMsgs contains all warnings during parsing.
	WarningMsgs []string `toml:"-" json:"-"`

	logger   *zap.Logger
	logProps *log.ZapProperties
}

// AuthConfig holds the login used by the CLI. An empty user skips login.
type AuthConfig struct {
	User     string `toml:"user" json:"user"`
	Password string `toml:"password" json:"-"`
}

// SecurityConfig is the configuration for supporting tls.
type SecurityConfig struct {
	// CAPath is the path of file that contains list of trusted SSL CAs.
	CAPath string `toml:"cacert-path" json:"cacert-path"`
	// CertPath is the path of file that contains X509 certificate in PEM format.
	CertPath string `toml:"cert-path" json:"cert-path"`
	// KeyPath is the path of file that contains X509 key in PEM format.
	KeyPath string `toml:"key-path" json:"key-path"`
}

// ToSecurityOption converts the config to the dial option of grpcutil.
func (s SecurityConfig) ToSecurityOption() grpcutil.SecurityOption {
	return grpcutil.SecurityOption{
		CAPath:   s.CAPath,
		CertPath: s.CertPath,
		KeyPath:  s.KeyPath,
	}
}

// NewConfig creates a new config with its flags registered.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.FlagSet = pflag.NewFlagSet("graph-cli", pflag.ContinueOnError)
	fs := cfg.FlagSet

	fs.StringVar(&cfg.configFile, "config", "", "Config file")
	fs.StringVar(&cfg.Endpoints, "endpoints", "", fmt.Sprintf("Comma separated server addresses (default '%s')", defaultEndpoints))
	fs.Float64Var(&cfg.RateLimit, "rate-limit", 0, "Max requests per second, 0 means unlimited")
	fs.Int64Var(&cfg.RateBurst, "rate-burst", 0, "Burst size of the rate limit")
	fs.Var(&cfg.RequestTimeout, "request-timeout", fmt.Sprintf("Timeout of one command (default '%s')", defaultRequestTimeout))

	fs.StringVarP(&cfg.Auth.User, "user", "u", "", "Login user")
	fs.StringVarP(&cfg.Auth.Password, "password", "p", "", "Login password")

	fs.StringVarP(&cfg.Log.Level, "log-level", "L", "", "Log level: debug, info, warn, error, fatal (default 'warn')")
	fs.StringVar(&cfg.Log.File.Filename, "log-file", "", "Log file path")

	fs.StringVar(&cfg.Security.CAPath, "cacert", "", "Path of file that contains list of trusted TLS CAs")
	fs.StringVar(&cfg.Security.CertPath, "cert", "", "Path of file that contains X509 certificate in PEM format")
	fs.StringVar(&cfg.Security.KeyPath, "key", "", "Path of file that contains X509 key in PEM format")

	return cfg
}

// Parse parses flag definitions from the argument list, then loads the
// config file.
func (c *Config) Parse(arguments []string) error {
	if err := c.FlagSet.Parse(arguments); err != nil {
		return errors.WithStack(err)
	}
	if len(c.FlagSet.Args()) != 0 {
		return errors.Errorf("'%s' is an invalid flag", c.FlagSet.Arg(0))
	}
	return c.Load()
}

// Load reads the config file named by --config once the flags are parsed,
// either by Parse or by a command line parser the FlagSet was added to.
// Flags set on the command line win over the file.
func (c *Config) Load() error {
	var meta *toml.MetaData
	if c.configFile != "" {
		changed := make(map[*pflag.Flag]string)
		c.FlagSet.VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				changed[f] = f.Value.String()
			}
		})

		var err error
		meta, err = c.configFromFile(c.configFile)
		if err != nil {
			return err
		}

		for f, value := range changed {
			if err := f.Value.Set(value); err != nil {
				return errors.WithStack(err)
			}
		}
	}
	if err := c.Adjust(meta); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) configFromFile(path string) (*toml.MetaData, error) {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	return &meta, nil
}

// Adjust fills unset fields with defaults.
func (c *Config) Adjust(meta *toml.MetaData) error {
	if meta != nil {
		if undecoded := meta.Undecoded(); len(undecoded) != 0 {
			errInfo := "Config contains undefined item: "
			for _, key := range undecoded {
				errInfo += key.String() + ", "
			}
			c.WarningMsgs = append(c.WarningMsgs, errInfo[:len(errInfo)-2])
		}
	}

	adjustString(&c.Endpoints, defaultEndpoints)
	adjustDuration(&c.RequestTimeout, defaultRequestTimeout)
	adjustString(&c.Log.Level, defaultLogLevel)
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = int64(c.RateLimit)
		if c.RateBurst < 1 {
			c.RateBurst = 1
		}
	}
	return nil
}

// Validate is used to validate if some configurations are right.
func (c *Config) Validate() error {
	if len(c.EndpointList()) == 0 {
		return errors.New("no endpoint is configured")
	}
	if (c.Security.CertPath == "") != (c.Security.KeyPath == "") {
		return errors.New("cert-path and key-path must be set together")
	}
	if c.RateLimit < 0 {
		return errors.Errorf("rate-limit %v is negative", c.RateLimit)
	}
	if c.RequestTimeout.Duration <= 0 {
		return errors.Errorf("request-timeout %v is not positive", c.RequestTimeout.Duration)
	}
	return nil
}

// EndpointList returns the configured endpoint addresses.
func (c *Config) EndpointList() []string {
	return grpcutil.SplitAddrs(c.Endpoints)
}

func (c *Config) String() string {
	data, err := json.Marshal(c)
	if err != nil {
		return "<nil>"
	}
	return string(data)
}

// SetupLogger setup the logger.
func (c *Config) SetupLogger() error {
	lg, p, err := log.InitLogger(&c.Log, zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		return errors.WithStack(err)
	}
	c.logger = lg
	c.logProps = p
	log.ReplaceGlobals(lg, p)
	return nil
}

// GetZapLogger gets the created zap logger.
func (c *Config) GetZapLogger() *zap.Logger {
	return c.logger
}

// GetZapLogProperties gets properties of the zap logger.
func (c *Config) GetZapLogProperties() *log.ZapProperties {
	return c.logProps
}

func adjustString(v *string, defValue string) {
	if len(*v) == 0 {
		*v = defValue
	}
}

func adjustDuration(v *Duration, defValue time.Duration) {
	if v.Duration == 0 {
		v.Duration = defValue
	}
}

// Duration is a time.Duration read from and written to text, e.g. "3s".
type Duration struct {
	time.Duration
}

// NewDuration creates a Duration from time.Duration.
func NewDuration(duration time.Duration) Duration {
	return Duration{Duration: duration}
}

// MarshalJSON returns the duration as a JSON string.
func (d *Duration) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%s"`, d.String())), nil
}

// UnmarshalJSON parses a JSON string into the duration.
func (d *Duration) UnmarshalJSON(text []byte) error {
	s, err := strconv.Unquote(string(text))
	if err != nil {
		return errors.WithStack(err)
	}
	return d.Set(s)
}

// UnmarshalText parses a TOML string into the duration.
func (d *Duration) UnmarshalText(text []byte) error {
	return d.Set(string(text))
}

// Set implements pflag.Value.
func (d *Duration) Set(s string) error {
	duration, err := time.ParseDuration(s)
	if err != nil {
		return errors.WithStack(err)
	}
	d.Duration = duration
	return nil
}

// Type implements pflag.Value.
func (d *Duration) Type() string {
	return "duration"
}
