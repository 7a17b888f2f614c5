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
	"github.com/fixify/ui-core/internal/domain/model"
)

// ContactMessageRepo provides database operations for contact form submissions.
type ContactMessageRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewContactMessageRepo creates a new ContactMessageRepo with real time provider.
func NewContactMessageRepo(db *sql.DB) *ContactMessageRepo {
	return &ContactMessageRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const contactMessageColumns = `id, name, email, phone, message, created_at`

// Create records a contact form submission.
func (r *ContactMessageRepo) Create(ctx context.Context, req *model.CreateContactMessageRequest) (*model.ContactMessage, error) {
	if req == nil {
		return nil, errors.New("create contact message request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.ContactMessage
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO contact_messages (name, email, phone, message, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+contactMessageColumns,
			strings.TrimSpace(req.Name),
			strings.TrimSpace(req.Email),
			req.Phone,
			strings.TrimSpace(req.Message),
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ContactMessage])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List retrieves contact messages, newest first.
func (r *ContactMessageRepo) List(ctx context.Context, limit, offset int) ([]*model.ContactMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	offset = max(offset, 0)

	var rowsOut []model.ContactMessage
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+contactMessageColumns+`
			FROM contact_messages
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.ContactMessage])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}

	res := make([]*model.ContactMessage, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}
