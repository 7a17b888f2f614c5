package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildListQuery_Basic(t *testing.T) {
	opts := NewListQueryOptions("services",
		WithColumns("id", "name"),
		WithOrderBy("created_at", "desc"),
		WithLimit(10),
		WithOffset(5),
	)
	query, args := BuildListQuery(opts)

	assert.Equal(t, `SELECT "id", "name" FROM "services" ORDER BY "created_at" DESC LIMIT $1 OFFSET $2`, query)
	assert.Equal(t, []any{10, 5}, args)
}

func TestBuildListQuery_Conditions(t *testing.T) {
	opts := NewListQueryOptions("services",
		WithColumns("id"),
		WithCondition(WhereCond("is_active", Equal, true)),
		WithCondition(WhereCond("name", ILike, "%clean%")),
	)
	query, args := BuildListQuery(opts)

	assert.Equal(t, `SELECT "id" FROM "services" WHERE "is_active" = $1 AND "name" ILIKE $2`, query)
	assert.Equal(t, []any{true, "%clean%"}, args)
}

func TestBuildListQuery_InCondition(t *testing.T) {
	opts := NewListQueryOptions("bookings",
		WithCondition(WhereCond("status", In, []string{"pending", "in_progress"})),
	)
	query, args := BuildListQuery(opts)

	assert.Equal(t, `SELECT * FROM "bookings" WHERE "status" IN ($1, $2)`, query)
	assert.Equal(t, []any{"pending", "in_progress"}, args)
}

func TestBuildListQuery_InConditionEmptySliceSkipped(t *testing.T) {
	opts := NewListQueryOptions("bookings",
		WithCondition(WhereCond("status", In, []string{})),
	)
	query, args := BuildListQuery(opts)

	assert.Equal(t, `SELECT * FROM "bookings"`, query)
	assert.Empty(t, args)
}

func TestBuildListQuery_CountOnly(t *testing.T) {
	opts := NewListQueryOptions("bookings",
		WithCountOnly(),
		WithCondition(WhereCond("customer_id", Equal, "c1")),
		WithLimit(10),
	)
	query, args := BuildListQuery(opts)

	assert.Equal(t, `SELECT COUNT(*) FROM "bookings" WHERE "customer_id" = $1`, query)
	assert.Equal(t, []any{"c1"}, args)
}

func TestBuildListQuery_SanitizesIdentifiers(t *testing.T) {
	opts := NewListQueryOptions("bookings",
		WithOrderBy("created_at; DROP TABLE bookings", "desc"),
	)
	query, _ := BuildListQuery(opts)

	assert.Contains(t, query, `"created_at; DROP TABLE bookings"`)
}

func TestBuildListQuery_InvalidDirectionOmitted(t *testing.T) {
	opts := NewListQueryOptions("bookings", WithOrderBy("created_at", "sideways"))
	query, _ := BuildListQuery(opts)

	assert.Equal(t, `SELECT * FROM "bookings" ORDER BY "created_at"`, query)
}

func TestBuildListQuery_NilOptions(t *testing.T) {
	query, args := BuildListQuery(nil)
	assert.Empty(t, query)
	assert.Nil(t, args)
}
