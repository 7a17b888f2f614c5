package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/fixify/ui-core/internal/errors"

	"github.com/fixify/ui-core/internal/data/database"
	"github.com/fixify/ui-core/internal/data/pgxutil"
	"github.com/fixify/ui-core/internal/domain/model"
)

// BookingRepo provides database operations for bookings.
type BookingRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewBookingRepo creates a new BookingRepo with real time provider.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewBookingRepoWithTimeProvider creates a new BookingRepo with a custom time provider (useful for tests).
func NewBookingRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *BookingRepo {
	return &BookingRepo{DB: db, timeProvider: tp}
}

const bookingColumnList = `id, customer_id, service_id, staff_id, status, scheduled_date, scheduled_time, address, notes, total_price, created_at, updated_at`

// Create inserts a new booking in pending state. The total price is snapshotted
// from the service's effective price inside the same transaction so later price
// edits never change what the customer agreed to pay.
func (r *BookingRepo) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	if req == nil {
		return nil, errors.New("create booking request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var out model.Booking
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		svcRows, err := tx.Query(ctx, `
			SELECT id, category_id, name, description, marked_price, discount_price, image_url, is_active, created_at
			FROM services
			WHERE id = $1`, req.ServiceID)
		if err != nil {
			return err
		}
		svc, err := pgx.CollectOneRow(svcRows, pgx.RowToStructByName[model.Service])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrServiceNotFound
			}
			return err
		}
		if !svc.IsActive {
			return apperrors.Validation("service is not currently bookable")
		}

		rows, err := tx.Query(ctx, `
			INSERT INTO bookings (
				customer_id, service_id, status, scheduled_date, scheduled_time, address, notes, total_price, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $9
			) RETURNING `+bookingColumnList,
			req.CustomerID,
			req.ServiceID,
			model.BookingStatusPending,
			req.ScheduledDate,
			req.ScheduledTime,
			req.Address,
			req.Notes,
			svc.EffectivePrice(),
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Booking])
		return err
	}})
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return nil, err
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a booking by ID.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var out model.Booking
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+bookingColumnList+`
			FROM bookings
			WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Booking])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking by ID: %w", err)
	}
	return &out, nil
}

// ListWithOptions retrieves bookings with optional filters, newest first.
func (r *BookingRepo) ListWithOptions(
	ctx context.Context,
	opts model.BookingsListOptions,
) ([]*model.Booking, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	queryOpts := []database.ListQueryOption{
		database.WithColumns(bookingColumns()...),
		database.WithLimit(limit),
		database.WithOffset(offset),
		database.WithOrderBy("created_at", sortDirDesc),
	}
	if opts.CustomerID != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("customer_id", database.Equal, *opts.CustomerID),
		))
	}
	if opts.StaffID != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("staff_id", database.Equal, *opts.StaffID),
		))
	}
	if opts.Status != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("status", database.Equal, *opts.Status),
		))
	}

	query, args := database.BuildListQuery(database.NewListQueryOptions("bookings", queryOpts...))

	var rowsOut []model.Booking
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Booking])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list bookings with options: %w", err)
	}

	res := make([]*model.Booking, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// UpdateStatus moves a booking to the next lifecycle state. The current row is
// locked for the duration of the transition check so concurrent updates cannot
// race past the lifecycle rules.
func (r *BookingRepo) UpdateStatus(
	ctx context.Context,
	id string,
	next model.BookingStatus,
) (*model.Booking, error) {
	if !next.Valid() {
		return nil, apperrors.ValidationField("status", "unknown booking status")
	}

	var out model.Booking
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		var current model.BookingStatus
		if err := tx.QueryRow(ctx, `
			SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, id).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrBookingNotFound
			}
			return err
		}
		if !current.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current, next)
		}

		rows, err := tx.Query(ctx, `
			UPDATE bookings SET status = $2, updated_at = $3
			WHERE id = $1
			RETURNING `+bookingColumnList,
			id, next, r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Booking])
		return err
	}})
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrInvalidStatusTransition) {
			return nil, err
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// AssignStaff sets the staff member responsible for a booking.
func (r *BookingRepo) AssignStaff(ctx context.Context, id, staffID string) (*model.Booking, error) {
	var out model.Booking
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE bookings SET staff_id = $2, updated_at = $3
			WHERE id = $1
			RETURNING `+bookingColumnList,
			id, staffID, r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Booking])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// bookingColumns returns the standard column list for booking queries.
func bookingColumns() []string {
	return []string{
		"id",
		"customer_id",
		"service_id",
		"staff_id",
		"status",
		"scheduled_date",
		"scheduled_time",
		"address",
		"notes",
		"total_price",
		"created_at",
		"updated_at",
	}
}
