package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"svcdir/internal/domain"
)

const sessionTokenType = "session"

// TokenService emite un token de sesion por identidad. Reautenticar devuelve
// el mismo token mientras siga vigente.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	store  TokenStore
}

type SessionClaims struct {
	IdentityID    string `json:"uid"`
	ServiceNumber string `json:"sn"`
	TokenType     string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

func NewTokenService(secret string, ttl time.Duration, store TokenStore) *TokenService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if store == nil {
		store = NewMemoryTokenStore()
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "svcdir",
		store:  store,
	}
}

// GetOrCreate devuelve el token vigente de la identidad o emite uno nuevo.
func (s *TokenService) GetOrCreate(ctx context.Context, identity domain.Identity) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("token secret not configured")
	}
	if strings.TrimSpace(identity.ID) == "" {
		return "", errors.New("identity id is required")
	}

	existing, err := s.store.Get(ctx, identity.ID)
	if err != nil {
		return "", err
	}
	if existing != "" {
		if _, err := s.parse(existing); err == nil {
			return existing, nil
		}
		if err := s.store.Delete(ctx, identity.ID); err != nil {
			return "", err
		}
	}

	token, err := s.sign(identity, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return s.store.PutIfAbsent(ctx, identity.ID, token, s.ttl)
}

// Authenticate valida firma y vigencia, y que el token sea el actual de la identidad.
func (s *TokenService) Authenticate(ctx context.Context, token string) (SessionClaims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(token) == "" {
		return SessionClaims{}, ErrTokenInvalid
	}
	claims, err := s.parse(token)
	if err != nil {
		return SessionClaims{}, err
	}
	current, err := s.store.Get(ctx, claims.IdentityID)
	if err != nil {
		return SessionClaims{}, err
	}
	if current != token {
		return SessionClaims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) Revoke(ctx context.Context, identityID string) error {
	return s.store.Delete(ctx, identityID)
}

func (s *TokenService) sign(identity domain.Identity, now time.Time) (string, error) {
	claims := SessionClaims{
		IdentityID:    identity.ID,
		ServiceNumber: identity.ServiceNumber,
		TokenType:     sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) parse(tokenString string) (SessionClaims, error) {
	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrTokenExpired
		}
		return SessionClaims{}, ErrTokenInvalid
	}
	if !s.isValidClaims(claims) {
		return SessionClaims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) isValidClaims(claims SessionClaims) bool {
	if claims.TokenType != sessionTokenType {
		return false
	}
	if strings.TrimSpace(claims.IdentityID) == "" || claims.Subject != claims.IdentityID {
		return false
	}
	return claims.Issuer == s.issuer
}
