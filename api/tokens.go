package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogicum/errs"
)

const tokenIssuerName = "blogicum"

// tokenIssuer signs and verifies admin access tokens
type tokenIssuer interface {
	Issue(userID uint) (string, time.Time, error)
	Parse(token string) (uint, error)
}

// jwtTokens issues HS256 tokens whose subject is the staff user's id
type jwtTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newJWTTokens(secret string, ttl time.Duration, now func() time.Time) *jwtTokens {
	if secret == "" {
		secret = randomSecret()
		log.Warn().Msg("ADMIN_TOKEN_SECRET is not set; admin tokens will not survive a restart")
	}
	if now == nil {
		now = time.Now
	}
	return &jwtTokens{secret: []byte(secret), ttl: ttl, now: now}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("read random secret: %v", err))
	}
	return hex.EncodeToString(b)
}

func (t *jwtTokens) Issue(userID uint) (string, time.Time, error) {
	issuedAt := t.now()
	expiresAt := issuedAt.Add(t.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuerName,
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, errs.NewInternalError("failed to sign access token", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies token and returns the user id it was issued for
func (t *jwtTokens) Parse(token string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return 0, errs.NewExpiredTokenError()
	}
	if err != nil {
		return 0, errs.NewInvalidTokenError()
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, errs.NewInvalidTokenError()
	}
	return uint(userID), nil
}
