package utils // package utils provides helper functions for service token handling

import (
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ServiceToken represents a signed HS256 token issued to a machine caller
// (the scheduler, ops tooling) along with its expiry.  Tokens are minted
// out of band and presented in the Authorization header when calling the
// protected /v1 endpoints.
type ServiceToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewServiceToken builds and signs an HS256 JWT for a machine caller.  It
// takes the signing secret, the caller identifier, the caller's role
// ("SCHEDULER" or "OPS") and a TTL.  The JWT includes standard claims:
// subject (sub), role, expiration (exp) and issued at (iat).
func NewServiceToken(secret, callerID, role string, ttl time.Duration) (ServiceToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":  callerID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := tok.SignedString([]byte(secret))
    if err != nil {
        return ServiceToken{}, err
    }
    return ServiceToken{Token: signed, Exp: exp}, nil
}
