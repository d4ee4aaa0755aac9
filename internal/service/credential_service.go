package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"svcdir/internal/domain"
	"svcdir/internal/notify"
	"svcdir/internal/repository"
)

// CredentialService administra el ciclo de vida del passcode. No guarda
// estado propio: toda mutacion pasa por el repositorio.
type CredentialService struct {
	logger      *zap.Logger
	identities  repository.IdentityRepository
	sms         notify.Sender
	mail        notify.Sender
	phoneRegion string
}

func NewCredentialService(logger *zap.Logger, identities repository.IdentityRepository, sms, mail notify.Sender, phoneRegion string) *CredentialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialService{
		logger:      logger,
		identities:  identities,
		sms:         sms,
		mail:        mail,
		phoneRegion: phoneRegion,
	}
}

type CreateIdentityInput struct {
	ServiceNumber   string
	Username        string
	Name            string
	Email           string
	Phone           string
	ProfileImageRef string
	Passcode        string
	IsActive        *bool
	IsStaff         bool
	IsAdmin         bool
	IsSuperuser     bool
}

// CreatedIdentity acompana la identidad recien creada con su passcode. Es la
// unica divulgacion del codigo fuera de las vistas administrativas.
type CreatedIdentity struct {
	Identity domain.Identity `json:"identity"`
	Passcode string          `json:"passcode"`
	Notified bool            `json:"notified"`
}

func (s *CredentialService) GeneratePasscode() (string, error) {
	return GeneratePasscode()
}

func (s *CredentialService) VerifyPasscode(identity domain.Identity, raw string) bool {
	return VerifyPasscode(identity, raw)
}

// SetPasscode guarda raw tal cual como passcode visible y su hash.
func (s *CredentialService) SetPasscode(ctx context.Context, identity *domain.Identity, raw string) error {
	if s.identities == nil {
		return ErrNotConfigured
	}
	if identity == nil || identity.ID == "" {
		return errors.New("identity is required")
	}
	hash, err := HashPasscode(raw)
	if err != nil {
		return err
	}
	if err := s.identities.UpdatePasscode(ctx, identity.ID, hash, raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update passcode: %w", err)
	}
	identity.PasscodeHash = hash
	return nil
}

func (s *CredentialService) CreateIdentity(ctx context.Context, input CreateIdentityInput) (CreatedIdentity, error) {
	if s.identities == nil {
		return CreatedIdentity{}, ErrNotConfigured
	}

	username := domain.NormalizeUsername(input.Username)
	email := domain.NormalizeEmail(input.Email)
	serviceNumber := domain.NormalizeServiceNumber(input.ServiceNumber)
	phone := domain.NormalizePhone(input.Phone)

	switch {
	case username == "":
		return CreatedIdentity{}, missingField("username")
	case email == "":
		return CreatedIdentity{}, missingField("email")
	case serviceNumber == "":
		return CreatedIdentity{}, missingField("service_number")
	}
	if !strings.Contains(email, "@") {
		return CreatedIdentity{}, invalidField("email", "is not a valid address")
	}
	if !domain.ValidPhone(phone, s.phoneRegion) {
		return CreatedIdentity{}, invalidField("phone", "does not match the regional format")
	}

	code := input.Passcode
	if code == "" {
		generated, err := GeneratePasscode()
		if err != nil {
			return CreatedIdentity{}, fmt.Errorf("generate passcode: %w", err)
		}
		code = generated
	}
	hash, err := HashPasscode(code)
	if err != nil {
		return CreatedIdentity{}, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	identity := domain.Identity{
		ID:              uuid.NewString(),
		ServiceNumber:   serviceNumber,
		Username:        username,
		Name:            strings.TrimSpace(input.Name),
		Email:           email,
		Phone:           phone,
		ProfileImageRef: strings.TrimSpace(input.ProfileImageRef),
		PasscodeHash:    hash,
		IsActive:        active,
		IsStaff:         input.IsStaff || input.IsSuperuser,
		IsAdmin:         input.IsAdmin || input.IsSuperuser,
		IsSuperuser:     input.IsSuperuser,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.identities.Create(ctx, identity, code); err != nil {
		return CreatedIdentity{}, err
	}

	notified := s.notifyPasscode(ctx, identity, code)
	return CreatedIdentity{Identity: identity, Passcode: code, Notified: notified}, nil
}

// ResetPasscode asigna un passcode nuevo a la identidad y lo notifica.
func (s *CredentialService) ResetPasscode(ctx context.Context, serviceNumber string) (CreatedIdentity, error) {
	if s.identities == nil {
		return CreatedIdentity{}, ErrNotConfigured
	}
	identity, err := s.identities.GetByServiceNumber(ctx, domain.NormalizeServiceNumber(serviceNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CreatedIdentity{}, ErrNotFound
		}
		return CreatedIdentity{}, err
	}
	code, err := GeneratePasscode()
	if err != nil {
		return CreatedIdentity{}, fmt.Errorf("generate passcode: %w", err)
	}
	if err := s.SetPasscode(ctx, &identity, code); err != nil {
		return CreatedIdentity{}, err
	}
	notified := s.notifyPasscode(ctx, identity, code)
	return CreatedIdentity{Identity: identity, Passcode: code, Notified: notified}, nil
}

// notifyPasscode es best-effort: los fallos se registran y no se propagan.
func (s *CredentialService) notifyPasscode(ctx context.Context, identity domain.Identity, code string) bool {
	message := fmt.Sprintf("Your passcode is %s. Service number: %s", code, identity.ServiceNumber)
	notified := false

	if s.sms != nil && identity.Phone != "" {
		res, err := s.sms.Send(ctx, identity.Phone, message)
		if err != nil {
			s.logger.Warn("send passcode sms failed",
				zap.Error(err),
				zap.String("service_number", identity.ServiceNumber),
			)
		} else {
			s.logger.Info("passcode sms sent",
				zap.String("service_number", identity.ServiceNumber),
				zap.String("reference", res.Reference),
			)
			notified = true
		}
	}
	if s.mail != nil && identity.Email != "" {
		if _, err := s.mail.Send(ctx, identity.Email, message); err != nil {
			s.logger.Warn("send passcode email failed",
				zap.Error(err),
				zap.String("service_number", identity.ServiceNumber),
			)
		} else {
			notified = true
		}
	}
	return notified
}
