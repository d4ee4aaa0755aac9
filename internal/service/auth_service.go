package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"svcdir/internal/domain"
	"svcdir/internal/media"
)

// AuthState es el estado del protocolo de dos pasos tras cada llamada.
type AuthState string

const (
	StateInit          AuthState = "INIT"
	StateIdentified    AuthState = "IDENTIFIED"
	StateAuthenticated AuthState = "AUTHENTICATED"
	StateFailed        AuthState = "FAILED"
)

// IdentityReader es la vista de solo lectura que usa la autenticacion. No
// incluye acceso al passcode en claro.
type IdentityReader interface {
	GetByID(ctx context.Context, id string) (domain.Identity, error)
	GetByServiceNumber(ctx context.Context, serviceNumber string) (domain.Identity, error)
	TouchLastAuthenticated(ctx context.Context, id string, at time.Time) error
}

// SessionTokens es el emisor de tokens que consume el protocolo.
type SessionTokens interface {
	GetOrCreate(ctx context.Context, identity domain.Identity) (string, error)
	Authenticate(ctx context.Context, token string) (SessionClaims, error)
	Revoke(ctx context.Context, identityID string) error
}

// AuthService implementa el protocolo identificar -> verificar. Cada paso es
// una peticion independiente; no se guarda estado entre ambos.
type AuthService struct {
	logger     *zap.Logger
	identities IdentityReader
	tokens     SessionTokens
	media      media.Resolver
}

func NewAuthService(logger *zap.Logger, identities IdentityReader, tokens SessionTokens, resolver media.Resolver) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		logger:     logger,
		identities: identities,
		tokens:     tokens,
		media:      resolver,
	}
}

type IdentifyResult struct {
	State         AuthState `json:"-"`
	Exists        bool      `json:"exists"`
	ServiceNumber string    `json:"service_number,omitempty"`
	MaskedPhone   string    `json:"masked_phone,omitempty"`
}

type VerifyResult struct {
	State   AuthState            `json:"-"`
	Token   string               `json:"token"`
	Profile domain.PublicProfile `json:"profile"`
}

// Identify es el paso 1. Devuelve ErrNotFound (con Exists=false) si la
// identidad no existe o esta inactiva.
func (s *AuthService) Identify(ctx context.Context, serviceNumber string) (IdentifyResult, error) {
	if s.identities == nil {
		return IdentifyResult{State: StateInit}, ErrNotConfigured
	}
	serviceNumber = domain.NormalizeServiceNumber(serviceNumber)
	if serviceNumber == "" {
		return IdentifyResult{State: StateInit}, missingField("service_number")
	}

	identity, err := s.identities.GetByServiceNumber(ctx, serviceNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return IdentifyResult{State: StateInit}, ErrNotFound
		}
		return IdentifyResult{State: StateInit}, fmt.Errorf("lookup identity: %w", err)
	}
	if !identity.IsActive {
		return IdentifyResult{State: StateInit}, ErrNotFound
	}

	return IdentifyResult{
		State:         StateIdentified,
		Exists:        true,
		ServiceNumber: identity.ServiceNumber,
		MaskedPhone:   MaskPhone(identity.Phone),
	}, nil
}

// Verify es el paso 2. Identidad ausente, inactiva o passcode incorrecto
// producen el mismo ErrUnauthorized.
func (s *AuthService) Verify(ctx context.Context, serviceNumber, code string) (VerifyResult, error) {
	failed := VerifyResult{State: StateFailed}
	if s.identities == nil || s.tokens == nil {
		return failed, ErrNotConfigured
	}
	serviceNumber = domain.NormalizeServiceNumber(serviceNumber)
	code = strings.TrimSpace(code)
	if serviceNumber == "" {
		return failed, missingField("service_number")
	}
	if code == "" {
		return failed, missingField("code")
	}

	identity, err := s.identities.GetByServiceNumber(ctx, serviceNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			rejectPasscode(code)
			return failed, ErrUnauthorized
		}
		return failed, fmt.Errorf("lookup identity: %w", err)
	}
	if !identity.IsActive {
		rejectPasscode(code)
		return failed, ErrUnauthorized
	}
	if !VerifyPasscode(identity, code) {
		return failed, ErrUnauthorized
	}

	token, err := s.tokens.GetOrCreate(ctx, identity)
	if err != nil {
		return failed, fmt.Errorf("%w: %v", ErrTokenIssuer, err)
	}

	now := time.Now().UTC()
	if err := s.identities.TouchLastAuthenticated(ctx, identity.ID, now); err != nil {
		s.logger.Warn("touch last authenticated failed", zap.Error(err), zap.String("identity_id", identity.ID))
	} else {
		identity.LastAuthenticatedAt = &now
	}

	return VerifyResult{
		State:   StateAuthenticated,
		Token:   token,
		Profile: s.Profile(ctx, identity),
	}, nil
}

// Authorize resuelve un bearer token a su identidad activa.
func (s *AuthService) Authorize(ctx context.Context, token string) (domain.Identity, error) {
	if s.identities == nil || s.tokens == nil {
		return domain.Identity{}, ErrNotConfigured
	}
	claims, err := s.tokens.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenExpired) {
			return domain.Identity{}, ErrUnauthorized
		}
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrTokenIssuer, err)
	}
	identity, err := s.identities.GetByID(ctx, claims.IdentityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Identity{}, ErrUnauthorized
		}
		return domain.Identity{}, err
	}
	if !identity.IsActive {
		return domain.Identity{}, ErrUnauthorized
	}
	return identity, nil
}

func (s *AuthService) Logout(ctx context.Context, identity domain.Identity) error {
	if s.tokens == nil {
		return ErrNotConfigured
	}
	if err := s.tokens.Revoke(ctx, identity.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrTokenIssuer, err)
	}
	return nil
}

// Profile proyecta la identidad sin material de credenciales.
func (s *AuthService) Profile(ctx context.Context, identity domain.Identity) domain.PublicProfile {
	return domain.PublicProfile{
		ID:              identity.ID,
		Name:            identity.Name,
		ServiceNumber:   identity.ServiceNumber,
		Username:        identity.Username,
		Email:           identity.Email,
		Phone:           identity.Phone,
		ProfileImageURL: resolveImage(ctx, s.logger, s.media, identity.ProfileImageRef),
	}
}

// resolveImage devuelve nil si no hay imagen o el resolver falla.
func resolveImage(ctx context.Context, logger *zap.Logger, resolver media.Resolver, ref string) *string {
	if resolver == nil || strings.TrimSpace(ref) == "" {
		return nil
	}
	url, err := resolver.Resolve(ctx, ref)
	if err != nil {
		logger.Warn("resolve profile image failed", zap.Error(err), zap.String("ref", ref))
		return nil
	}
	return &url
}
