package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"svcdir/internal/domain"
)

// IdentityRepository define el contrato de persistencia para identidades.
// Las lecturas devuelven pgx.ErrNoRows cuando la identidad no existe.
type IdentityRepository interface {
	Create(ctx context.Context, identity domain.Identity, passcode string) error
	GetByID(ctx context.Context, id string) (domain.Identity, error)
	GetByServiceNumber(ctx context.Context, serviceNumber string) (domain.Identity, error)
	GetByUsername(ctx context.Context, username string) (domain.Identity, error)
	Update(ctx context.Context, identity domain.Identity) error
	UpdatePasscode(ctx context.Context, id, hash, passcode string) error
	TouchLastAuthenticated(ctx context.Context, id string, at time.Time) error
	ListDirectory(ctx context.Context) ([]domain.Identity, error)
}

// PasscodeVault expone el passcode en claro. Solo lo reciben los flujos
// administrativos; la autenticacion nunca depende de esta interfaz.
type PasscodeVault interface {
	GetPasscode(ctx context.Context, id string) (domain.PasscodeDisclosure, error)
	ListWithPasscodes(ctx context.Context) ([]domain.AdminIdentityView, error)
}

// DuplicateKeyError indica una violacion de unicidad sobre Field.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key: %s", e.Field)
}

const uniqueViolation = "23505"

var constraintFields = map[string]string{
	"identities_service_number_key": "service_number",
	"identities_username_key":       "username",
	"identities_email_key":          "email",
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		field, ok := constraintFields[pgErr.ConstraintName]
		if !ok {
			field = pgErr.ConstraintName
		}
		return &DuplicateKeyError{Field: field}
	}
	return err
}

// PgIdentityRepository implementa IdentityRepository y PasscodeVault usando pgxpool.
type PgIdentityRepository struct {
	pool *pgxpool.Pool
}

func NewPgIdentityRepository(pool *pgxpool.Pool) *PgIdentityRepository {
	return &PgIdentityRepository{pool: pool}
}

const identityColumns = `id, service_number, username, name, email, phone, profile_image,
		passcode_hash, is_active, is_staff, is_admin, is_superuser, last_authenticated_at, created_at`

func scanIdentity(row pgx.Row, extra ...any) (domain.Identity, error) {
	var i domain.Identity
	dest := []any{
		&i.ID,
		&i.ServiceNumber,
		&i.Username,
		&i.Name,
		&i.Email,
		&i.Phone,
		&i.ProfileImageRef,
		&i.PasscodeHash,
		&i.IsActive,
		&i.IsStaff,
		&i.IsAdmin,
		&i.IsSuperuser,
		&i.LastAuthenticatedAt,
		&i.CreatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return i, err
}

func (r *PgIdentityRepository) Create(ctx context.Context, identity domain.Identity, passcode string) error {
	const query = `
		INSERT INTO identities (id, service_number, username, name, email, phone, profile_image,
			passcode_hash, passcode_plain, is_active, is_staff, is_admin, is_superuser, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		identity.ID,
		identity.ServiceNumber,
		identity.Username,
		identity.Name,
		identity.Email,
		identity.Phone,
		identity.ProfileImageRef,
		identity.PasscodeHash,
		passcode,
		identity.IsActive,
		identity.IsStaff,
		identity.IsAdmin,
		identity.IsSuperuser,
		identity.CreatedAt,
	)
	return translateError(err)
}

func (r *PgIdentityRepository) getOne(ctx context.Context, where string, arg any) (domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE ` + where
	return scanIdentity(r.pool.QueryRow(ctx, query, arg))
}

func (r *PgIdentityRepository) GetByID(ctx context.Context, id string) (domain.Identity, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *PgIdentityRepository) GetByServiceNumber(ctx context.Context, serviceNumber string) (domain.Identity, error) {
	return r.getOne(ctx, "service_number = $1", serviceNumber)
}

func (r *PgIdentityRepository) GetByUsername(ctx context.Context, username string) (domain.Identity, error) {
	return r.getOne(ctx, "username = $1", username)
}

func (r *PgIdentityRepository) Update(ctx context.Context, identity domain.Identity) error {
	const query = `
		UPDATE identities
		SET service_number = $2, username = $3, name = $4, email = $5, phone = $6,
			profile_image = $7, is_active = $8, is_staff = $9, is_admin = $10
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		identity.ID,
		identity.ServiceNumber,
		identity.Username,
		identity.Name,
		identity.Email,
		identity.Phone,
		identity.ProfileImageRef,
		identity.IsActive,
		identity.IsStaff,
		identity.IsAdmin,
	)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgIdentityRepository) UpdatePasscode(ctx context.Context, id, hash, passcode string) error {
	const query = `UPDATE identities SET passcode_hash = $2, passcode_plain = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, hash, passcode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgIdentityRepository) TouchLastAuthenticated(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE identities SET last_authenticated_at = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

// ListDirectory devuelve identidades activas que no son superusuarios, sin orden;
// la colacion se aplica en memoria.
func (r *PgIdentityRepository) ListDirectory(ctx context.Context) ([]domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE is_active AND NOT is_superuser`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Identity
	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *PgIdentityRepository) GetPasscode(ctx context.Context, id string) (domain.PasscodeDisclosure, error) {
	const query = `SELECT id, service_number, passcode_plain FROM identities WHERE id = $1`
	var d domain.PasscodeDisclosure
	if err := r.pool.QueryRow(ctx, query, id).Scan(&d.IdentityID, &d.ServiceNumber, &d.Passcode); err != nil {
		return domain.PasscodeDisclosure{}, err
	}
	return d, nil
}

func (r *PgIdentityRepository) ListWithPasscodes(ctx context.Context) ([]domain.AdminIdentityView, error) {
	query := `SELECT ` + identityColumns + `, passcode_plain FROM identities ORDER BY username`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AdminIdentityView
	for rows.Next() {
		var plain string
		i, err := scanIdentity(rows, &plain)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.AdminIdentityView{Identity: i, Passcode: plain})
	}
	return out, rows.Err()
}
