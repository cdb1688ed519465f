package client

import (
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/golang/protobuf/proto"
	"github.com/pingcap-incubator/tinygraph/proto/pkg/graphpb"
	"github.com/pkg/errors"
)

// Credential is the token pair issued by a login. A Session holds at most one
// and replaces it as a whole.
type Credential struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is the exp claim of the access token, zero when unknown.
	ExpiresAt time.Time
}

// Expired reports whether the access token is known to be expired at now.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// decodeCredential parses the payload of a login response.
func decodeCredential(payload []byte) (Credential, error) {
	var token graphpb.Jwt
	if err := proto.Unmarshal(payload, &token); err != nil {
		return Credential{}, errors.Wrap(err, "decode credential")
	}
	return Credential{
		AccessToken:  token.GetAccessJwt(),
		RefreshToken: token.GetRefreshJwt(),
		ExpiresAt:    tokenExpiry(token.GetAccessJwt()),
	}, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// server is the only party that can verify it.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}
	}
	return time.Unix(int64(exp), 0)
}
