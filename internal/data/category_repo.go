package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/fixify/ui-core/internal/errors"

	"github.com/fixify/ui-core/internal/data/pgxutil"
	"github.com/fixify/ui-core/internal/domain/model"
)

// CategoryRepo provides database operations for service categories.
type CategoryRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCategoryRepo creates a new CategoryRepo with real time provider.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const categoryColumns = `id, name, description, icon, created_at`

// Create inserts a new service category.
func (r *CategoryRepo) Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.ServiceCategory, error) {
	if req == nil {
		return nil, errors.New("create category request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.ServiceCategory
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO service_categories (name, description, icon, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING `+categoryColumns,
			req.Name,
			req.Description,
			req.Icon,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ServiceCategory])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a service category by ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*model.ServiceCategory, error) {
	var out model.ServiceCategory
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+categoryColumns+`
			FROM service_categories
			WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ServiceCategory])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by ID: %w", err)
	}
	return &out, nil
}

// List retrieves all service categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]*model.ServiceCategory, error) {
	var rowsOut []model.ServiceCategory
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+categoryColumns+`
			FROM service_categories
			ORDER BY name ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.ServiceCategory])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	res := make([]*model.ServiceCategory, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a service category.
func (r *CategoryRepo) Update(ctx context.Context, id string, req model.UpdateCategoryRequest) (*model.ServiceCategory, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.ServiceCategory
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE service_categories SET
				name = COALESCE($2, name),
				description = COALESCE($3, description),
				icon = COALESCE($4, icon)
			WHERE id = $1
			RETURNING `+categoryColumns,
			id, req.Name, req.Description, req.Icon)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ServiceCategory])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete deletes a service category by ID. Fails while services still reference it.
func (r *CategoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM service_categories WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return rows > 0, nil
}
