package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	ProfileID string `json:"profile_id"`
	jwt.RegisteredClaims
}

// Parser resolves signed bearer tokens into caller profile ids.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Enabled() bool {
	return len(p.secret) > 0
}

func (p *Parser) Parse(raw string) (uint, error) {
	if !p.Enabled() {
		return 0, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.ProfileID, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: profile_id claim", ErrInvalidToken)
	}
	return uint(id), nil
}

// Issue signs a token for the profile. Used by tooling and tests.
func (p *Parser) Issue(profileID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ProfileID: strconv.FormatUint(uint64(profileID), 10),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
