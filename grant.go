package authtrust

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const grantIssuerName = "authtrust"

type grantClaims struct {
	Method string `json:"mth"`
	jwt.RegisteredClaims
}

// grantIssuer mints and validates the short-lived HS256 tokens that prove a
// recent successful second-factor verification.
type grantIssuer struct {
	cfg GrantConfig
	now func() time.Time
}

func newGrantIssuer(cfg GrantConfig, now func() time.Time) *grantIssuer {
	if now == nil {
		now = time.Now
	}
	return &grantIssuer{cfg: cfg, now: now}
}

func (g *grantIssuer) Issue(identity string, method DeliveryMethod) (string, error) {
	if g == nil || !g.cfg.Enabled {
		return "", ErrGrantsDisabled
	}

	now := g.now()
	claims := grantClaims{
		Method: string(method),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    grantIssuerName,
			Subject:   identity,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.cfg.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.cfg.SigningKey)
	if err != nil {
		return "", fmt.Errorf("sign grant: %w", err)
	}
	return signed, nil
}

func (g *grantIssuer) Validate(tokenString string) (*GrantClaims, error) {
	if g == nil || !g.cfg.Enabled {
		return nil, ErrGrantsDisabled
	}

	claims := &grantClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return g.cfg.SigningKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(grantIssuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrGrantInvalid, err)
	}
	if claims.Subject == "" {
		return nil, ErrGrantInvalid
	}

	return &GrantClaims{
		Identity:  claims.Subject,
		Method:    DeliveryMethod(claims.Method),
		GrantID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
