package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/fixify/ui-core/internal/errors"

	"github.com/fixify/ui-core/internal/data/pgxutil"
	"github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/ports"
)

// ProfileRepo provides database operations for user profiles. It satisfies
// ports.ProfileStore so the session controller can resolve roles directly
// against the database in self-hosted deployments.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ ports.ProfileStore = (*ProfileRepo)(nil)

// NewProfileRepo creates a new ProfileRepo with real time provider.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewProfileRepoWithTimeProvider creates a new ProfileRepo with a custom time provider (useful for tests).
func NewProfileRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: tp}
}

const profileColumns = `id, email, full_name, phone, role, created_at`

// Get retrieves a profile by user ID. Returns ports.ErrProfileNotFound when
// no row exists so callers treat a missing profile the same way across backends.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (auth.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return auth.Profile{}, ports.ErrProfileNotFound
	}

	var out auth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+profileColumns+`
			FROM profiles
			WHERE id = $1`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[auth.Profile])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Profile{}, ports.ErrProfileNotFound
		}
		return auth.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return out, nil
}

// Upsert inserts a profile row for a new user or refreshes the mutable fields
// of an existing one. Role changes go through UpdateRole, not here.
func (r *ProfileRepo) Upsert(ctx context.Context, p auth.Profile) (*auth.Profile, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, apperrors.Validation("profile id is required")
	}
	role := p.Role
	if !role.Valid() {
		role = auth.RoleCustomer
	}

	var out auth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO profiles (id, email, full_name, phone, role, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				email = EXCLUDED.email,
				full_name = EXCLUDED.full_name,
				phone = EXCLUDED.phone
			RETURNING `+profileColumns,
			p.ID,
			strings.TrimSpace(p.Email),
			strings.TrimSpace(p.FullName),
			p.Phone,
			role,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[auth.Profile])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// UpdateRole changes a user's role. Only admins call this; authorization is
// enforced at the service layer.
func (r *ProfileRepo) UpdateRole(ctx context.Context, userID string, role auth.Role) (*auth.Profile, error) {
	if !role.Valid() {
		return nil, apperrors.ValidationField("role", "unknown role")
	}

	var out auth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE profiles SET role = $2
			WHERE id = $1
			RETURNING `+profileColumns, userID, role)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[auth.Profile])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrProfileNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// ListByRole retrieves profiles holding the given role, ordered by creation time.
// Used by admin views to enumerate staff members.
func (r *ProfileRepo) ListByRole(ctx context.Context, role auth.Role, limit, offset int) ([]*auth.Profile, error) {
	if limit <= 0 {
		limit = 50
	}
	offset = max(offset, 0)

	var rowsOut []auth.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+profileColumns+`
			FROM profiles
			WHERE role = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`, role, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[auth.Profile])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list profiles by role: %w", err)
	}

	res := make([]*auth.Profile, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}
