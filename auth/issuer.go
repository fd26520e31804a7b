// Package auth issues and verifies tokens and runs the session lifecycle.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/config"
	"github.com/princinho/elearnbackend/models"
)

// Claims is shared by access and refresh tokens. Only the signing secret
// and lifetime differ.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

type ActivationClaims struct {
	User           models.PendingUser `json:"user"`
	ActivationCode string             `json:"activationCode"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// ActivationTicket is handed out at registration. Token goes to the client,
// Code goes to the mailbox.
type ActivationTicket struct {
	Token string
	Code  string
}

type Issuer struct {
	accessSecret     []byte
	refreshSecret    []byte
	activationSecret []byte
	accessTTL        time.Duration
	refreshTTL       time.Duration
	activationTTL    time.Duration
	parser           *jwt.Parser
}

func NewIssuer(cfg config.Tokens) (*Issuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" || cfg.ActivationSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	return &Issuer{
		accessSecret:     []byte(cfg.AccessSecret),
		refreshSecret:    []byte(cfg.RefreshSecret),
		activationSecret: []byte(cfg.ActivationSecret),
		accessTTL:        cfg.AccessTTL,
		refreshTTL:       cfg.RefreshTTL,
		activationTTL:    cfg.ActivationTTL,
		parser:           jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

func (i *Issuer) IssuePair(userID string) (TokenPair, error) {
	access, err := i.sign(i.accessSecret, userID, i.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.sign(i.refreshSecret, userID, i.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    i.accessTTL,
		RefreshTTL:   i.refreshTTL,
	}, nil
}

// ParseAccess returns the user id of a valid access token.
func (i *Issuer) ParseAccess(token string) (string, error) {
	return i.parse(i.accessSecret, token)
}

// ParseRefresh returns the user id of a valid refresh token.
func (i *Issuer) ParseRefresh(token string) (string, error) {
	return i.parse(i.refreshSecret, token)
}

func (i *Issuer) sign(secret []byte, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (i *Issuer) parse(secret []byte, tokenStr string) (string, error) {
	var claims Claims
	token, err := i.parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.Wrap(apperr.InvalidCredential, "Token is not valid", err)
	}
	if claims.ID == "" {
		return "", apperr.New(apperr.InvalidCredential, "Token is not valid")
	}
	return claims.ID, nil
}

// NewActivation signs the pending registration together with a fresh
// four digit code.
func (i *Issuer) NewActivation(pending models.PendingUser) (ActivationTicket, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return ActivationTicket{}, fmt.Errorf("activation code: %w", err)
	}
	code := fmt.Sprintf("%d", n.Int64()+1000)

	now := time.Now()
	claims := ActivationClaims{
		User:           pending,
		ActivationCode: code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.activationTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.activationSecret)
	if err != nil {
		return ActivationTicket{}, fmt.Errorf("sign activation token: %w", err)
	}
	return ActivationTicket{Token: token, Code: code}, nil
}

func (i *Issuer) ParseActivation(tokenStr string) (ActivationClaims, error) {
	var claims ActivationClaims
	token, err := i.parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return i.activationSecret, nil
	})
	if err != nil || !token.Valid {
		return ActivationClaims{}, apperr.Wrap(apperr.InvalidCredential, "Activation token is not valid", err)
	}
	return claims, nil
}
