package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/fixify/ui-core/internal/errors"

	"github.com/fixify/ui-core/internal/data/database"
	"github.com/fixify/ui-core/internal/data/pgxutil"
	"github.com/fixify/ui-core/internal/domain/model"
)

const (
	sortDirAsc  = "ASC"
	sortDirDesc = "DESC"
)

// ServiceRepo provides database operations for services.
type ServiceRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewServiceRepo creates a new ServiceRepo with real time provider.
func NewServiceRepo(db *sql.DB) *ServiceRepo {
	return &ServiceRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewServiceRepoWithTimeProvider creates a new ServiceRepo with a custom time provider (useful for tests).
func NewServiceRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ServiceRepo {
	return &ServiceRepo{DB: db, timeProvider: tp}
}

// Create inserts a new service.
func (r *ServiceRepo) Create(ctx context.Context, req *model.CreateServiceRequest) (*model.Service, error) {
	if req == nil {
		return nil, errors.New("create service request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Default is_active to true if not specified (matches DB default)
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	var out model.Service
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO services (
				category_id, name, description, marked_price, discount_price, image_url, is_active, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8
			) RETURNING `+serviceColumnList,
			req.CategoryID,
			strings.TrimSpace(req.Name),
			req.Description,
			req.MarkedPrice,
			req.DiscountPrice,
			req.ImageURL,
			isActive,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Service])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a service by ID.
func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*model.Service, error) {
	var out model.Service
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, serviceGetByIDQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Service])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service by ID: %w", err)
	}
	return &out, nil
}

// ListWithOptions retrieves services with optional filters and sorting.
func (r *ServiceRepo) ListWithOptions(
	ctx context.Context,
	opts model.ServicesListOptions,
) ([]*model.Service, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	queryOpts := r.buildServiceQueryOptions(opts, limit, offset)
	query, args := database.BuildListQuery(queryOpts)

	var rowsOut []model.Service
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Service])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list services with options: %w", err)
	}

	res := make([]*model.Service, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a service.
func (r *ServiceRepo) Update(
	ctx context.Context,
	id string,
	req model.UpdateServiceRequest,
) (*model.Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Service
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		setClause, args := r.buildUpdateClause(req)
		args = append(args, id)
		query := "UPDATE services SET " + setClause + " WHERE id = $" + strconv.Itoa(
			len(args),
		) + " RETURNING " + serviceColumnList
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Service])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// buildUpdateClause builds the SQL SET clause and args for updating a service based on the request.
func (r *ServiceRepo) buildUpdateClause(req model.UpdateServiceRequest) (string, []any) {
	setParts := make([]string, 0, 7)
	args := make([]any, 0, 7)
	nextIdx := func() int { return len(args) + 1 }

	if req.CategoryID != nil {
		setParts = append(setParts, fmt.Sprintf("category_id = $%d", nextIdx()))
		args = append(args, *req.CategoryID)
	}
	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", nextIdx()))
		args = append(args, *req.Description)
	}
	if req.MarkedPrice != nil {
		setParts = append(setParts, fmt.Sprintf("marked_price = $%d", nextIdx()))
		args = append(args, *req.MarkedPrice)
	}
	if req.DiscountPrice != nil {
		setParts = append(setParts, fmt.Sprintf("discount_price = $%d", nextIdx()))
		args = append(args, *req.DiscountPrice)
	}
	if req.ImageURL != nil {
		if strings.TrimSpace(*req.ImageURL) == "" {
			setParts = append(setParts, "image_url = NULL")
		} else {
			setParts = append(setParts, fmt.Sprintf("image_url = $%d", nextIdx()))
			args = append(args, *req.ImageURL)
		}
	}
	if req.IsActive != nil {
		setParts = append(setParts, fmt.Sprintf("is_active = $%d", nextIdx()))
		args = append(args, *req.IsActive)
	}

	return strings.Join(setParts, ", "), args
}

// Delete deletes a service by ID.
func (r *ServiceRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
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

// --- helpers ---

const (
	serviceColumnList = `id, category_id, name, description, marked_price, discount_price, image_url, is_active, created_at`

	serviceGetByIDQuery = `
		SELECT id, category_id, name, description, marked_price, discount_price, image_url, is_active, created_at
		FROM services
		WHERE id = $1`
)

// serviceColumns returns the standard column list for service queries.
func serviceColumns() []string {
	return []string{
		"id",
		"category_id",
		"name",
		"description",
		"marked_price",
		"discount_price",
		"image_url",
		"is_active",
		"created_at",
	}
}

// buildServiceQueryOptions builds query options for service listing with filters and sorting.
func (r *ServiceRepo) buildServiceQueryOptions(
	opts model.ServicesListOptions,
	limit, offset int,
) *database.ListQueryOptions {
	queryOpts := []database.ListQueryOption{
		database.WithColumns(serviceColumns()...),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}

	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("name", database.ILike, "%"+strings.TrimSpace(*opts.Q)+"%"),
		))
	}
	if opts.CategoryID != nil && strings.TrimSpace(*opts.CategoryID) != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("category_id", database.Equal, strings.TrimSpace(*opts.CategoryID)),
		))
	}
	if opts.Active != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("is_active", database.Equal, *opts.Active),
		))
	}

	sortCol, sortDir := validateSortOptions(opts.Sort, opts.Dir)
	queryOpts = append(queryOpts, database.WithOrderBy(sortCol, sortDir))

	return database.NewListQueryOptions("services", queryOpts...)
}

// validateSortOptions validates and returns safe sort column and direction.
func validateSortOptions(sort, dir string) (string, string) {
	sortCol := "created_at"
	sortDir := sortDirDesc

	if sort != "" {
		allowedSorts := map[string]string{
			"name":       "name",
			"created_at": "created_at",
		}
		if validSort, ok := allowedSorts[strings.ToLower(strings.TrimSpace(sort))]; ok {
			sortCol = validSort
		}
	}
	if dir != "" {
		allowedDirs := map[string]string{
			"asc":  sortDirAsc,
			"desc": sortDirDesc,
		}
		if validDir, ok := allowedDirs[strings.ToLower(strings.TrimSpace(dir))]; ok {
			sortDir = validDir
		}
	}
	return sortCol, sortDir
}
