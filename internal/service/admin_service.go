package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"svcdir/internal/domain"
	"svcdir/internal/media"
	"svcdir/internal/repository"
)

type TokenRevoker interface {
	Revoke(ctx context.Context, identityID string) error
}

// AdminService agrupa las operaciones del panel de staff. Es el unico
// consumidor de PasscodeVault.
type AdminService struct {
	logger      *zap.Logger
	identities  repository.IdentityRepository
	vault       repository.PasscodeVault
	credentials *CredentialService
	tokens      TokenRevoker
	uploader    media.Uploader
	phoneRegion string
}

func NewAdminService(
	logger *zap.Logger,
	identities repository.IdentityRepository,
	vault repository.PasscodeVault,
	credentials *CredentialService,
	tokens TokenRevoker,
	uploader media.Uploader,
	phoneRegion string,
) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		logger:      logger,
		identities:  identities,
		vault:       vault,
		credentials: credentials,
		tokens:      tokens,
		uploader:    uploader,
		phoneRegion: phoneRegion,
	}
}

// UpdateIdentityInput usa punteros: nil significa "sin cambios".
type UpdateIdentityInput struct {
	ServiceNumber   *string
	Username        *string
	Name            *string
	Email           *string
	Phone           *string
	ProfileImageRef *string
	IsActive        *bool
	IsStaff         *bool
	IsAdmin         *bool
}

func (s *AdminService) Create(ctx context.Context, input CreateIdentityInput) (CreatedIdentity, error) {
	if s.credentials == nil {
		return CreatedIdentity{}, ErrNotConfigured
	}
	return s.credentials.CreateIdentity(ctx, input)
}

// List devuelve las identidades con su passcode. Un search no vacio filtra
// por username, email o nombre (subcadena, sin distinguir mayusculas).
func (s *AdminService) List(ctx context.Context, search string) ([]domain.AdminIdentityView, error) {
	if s.vault == nil {
		return nil, ErrNotConfigured
	}
	views, err := s.vault.ListWithPasscodes(ctx)
	if err != nil {
		return nil, err
	}
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return views, nil
	}
	out := make([]domain.AdminIdentityView, 0, len(views))
	for _, v := range views {
		if matchesSearch(v.Identity, search) {
			out = append(out, v)
		}
	}
	return out, nil
}

func matchesSearch(identity domain.Identity, search string) bool {
	for _, field := range []string{identity.Username, identity.Email, identity.Name} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// Get devuelve una identidad con su passcode vigente.
func (s *AdminService) Get(ctx context.Context, serviceNumber string) (domain.AdminIdentityView, error) {
	if s.identities == nil || s.vault == nil {
		return domain.AdminIdentityView{}, ErrNotConfigured
	}
	identity, err := s.get(ctx, serviceNumber)
	if err != nil {
		return domain.AdminIdentityView{}, err
	}
	disclosure, err := s.vault.GetPasscode(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AdminIdentityView{}, ErrNotFound
		}
		return domain.AdminIdentityView{}, fmt.Errorf("get passcode: %w", err)
	}
	return domain.AdminIdentityView{Identity: identity, Passcode: disclosure.Passcode}, nil
}

func (s *AdminService) get(ctx context.Context, serviceNumber string) (domain.Identity, error) {
	identity, err := s.identities.GetByServiceNumber(ctx, domain.NormalizeServiceNumber(serviceNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Identity{}, ErrNotFound
		}
		return domain.Identity{}, err
	}
	return identity, nil
}

func (s *AdminService) Update(ctx context.Context, serviceNumber string, input UpdateIdentityInput) (domain.Identity, error) {
	if s.identities == nil {
		return domain.Identity{}, ErrNotConfigured
	}
	identity, err := s.get(ctx, serviceNumber)
	if err != nil {
		return domain.Identity{}, err
	}
	wasActive := identity.IsActive

	if input.ServiceNumber != nil {
		identity.ServiceNumber = domain.NormalizeServiceNumber(*input.ServiceNumber)
		if identity.ServiceNumber == "" {
			return domain.Identity{}, missingField("service_number")
		}
	}
	if input.Username != nil {
		identity.Username = domain.NormalizeUsername(*input.Username)
		if identity.Username == "" {
			return domain.Identity{}, missingField("username")
		}
	}
	if input.Email != nil {
		identity.Email = domain.NormalizeEmail(*input.Email)
		if identity.Email == "" {
			return domain.Identity{}, missingField("email")
		}
		if !strings.Contains(identity.Email, "@") {
			return domain.Identity{}, invalidField("email", "is not a valid address")
		}
	}
	if input.Phone != nil {
		phone := domain.NormalizePhone(*input.Phone)
		if !domain.ValidPhone(phone, s.phoneRegion) {
			return domain.Identity{}, invalidField("phone", "does not match the regional format")
		}
		identity.Phone = phone
	}
	if input.Name != nil {
		identity.Name = strings.TrimSpace(*input.Name)
	}
	if input.ProfileImageRef != nil {
		identity.ProfileImageRef = strings.TrimSpace(*input.ProfileImageRef)
	}
	if input.IsActive != nil {
		identity.IsActive = *input.IsActive
	}
	if input.IsStaff != nil {
		identity.IsStaff = *input.IsStaff
	}
	if input.IsAdmin != nil {
		identity.IsAdmin = *input.IsAdmin
	}

	if err := s.identities.Update(ctx, identity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Identity{}, ErrNotFound
		}
		return domain.Identity{}, err
	}

	if wasActive && !identity.IsActive {
		s.revoke(ctx, identity)
	}
	return identity, nil
}

// ResetPasscode genera un passcode nuevo e invalida la sesion vigente.
func (s *AdminService) ResetPasscode(ctx context.Context, serviceNumber string) (CreatedIdentity, error) {
	if s.credentials == nil {
		return CreatedIdentity{}, ErrNotConfigured
	}
	created, err := s.credentials.ResetPasscode(ctx, serviceNumber)
	if err != nil {
		return CreatedIdentity{}, err
	}
	s.revoke(ctx, created.Identity)
	return created, nil
}

type ImageUpload struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

func (s *AdminService) ImageUploadURL(ctx context.Context, serviceNumber, contentType string) (ImageUpload, error) {
	if s.uploader == nil {
		return ImageUpload{}, ErrMediaUnavailable
	}
	if s.identities == nil {
		return ImageUpload{}, ErrNotConfigured
	}
	identity, err := s.get(ctx, serviceNumber)
	if err != nil {
		return ImageUpload{}, err
	}
	key, url, err := s.uploader.UploadURL(ctx, identity.ID, contentType)
	if err != nil {
		return ImageUpload{}, fmt.Errorf("upload url: %w", err)
	}
	return ImageUpload{Key: key, UploadURL: url}, nil
}

func (s *AdminService) revoke(ctx context.Context, identity domain.Identity) {
	if s.tokens == nil {
		return
	}
	if err := s.tokens.Revoke(ctx, identity.ID); err != nil {
		s.logger.Warn("revoke session token failed", zap.Error(err), zap.String("identity_id", identity.ID))
	}
}
