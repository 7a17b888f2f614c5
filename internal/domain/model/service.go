//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxServiceNameLen = 255
)

// Service represents a bookable offering with list price and discounted price.
type Service struct {
	ID            string    `json:"id"                  db:"id"`
	CategoryID    string    `json:"category_id"         db:"category_id"`
	Name          string    `json:"name"                db:"name"`
	Description   *string   `json:"description,omitempty" db:"description"`
	MarkedPrice   float64   `json:"marked_price"        db:"marked_price"`
	DiscountPrice float64   `json:"discount_price"      db:"discount_price"`
	ImageURL      *string   `json:"image_url,omitempty" db:"image_url"`
	IsActive      bool      `json:"is_active"           db:"is_active"`
	CreatedAt     time.Time `json:"created_at"          db:"created_at"`
}

// EffectivePrice returns the price a customer pays: the discount price when
// one is set below the marked price, the marked price otherwise.
func (s *Service) EffectivePrice() float64 {
	if s.DiscountPrice > 0 && s.DiscountPrice < s.MarkedPrice {
		return s.DiscountPrice
	}
	return s.MarkedPrice
}

// ServicesListOptions controls paging and filtering for listing services.
// Notes:
// - Sort supports: "created_at", "name" (case-insensitive).
// - Dir supports: "asc", "desc" (case-insensitive); values are normalized internally.
// - Q matches name via ILIKE substring.
// - CategoryID and Active match exactly.
type ServicesListOptions struct {
	Limit      int
	Offset     int
	Q          *string // substring match on name (ILIKE)
	CategoryID *string // exact match
	Active     *bool   // exact match
	Sort       string  // allowed: "created_at", "name"
	Dir        string  // allowed: "asc", "desc" (case-insensitive; normalized internally)
}

// CreateServiceRequest represents parameters to create a Service.
type CreateServiceRequest struct {
	CategoryID    string  `json:"category_id"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	MarkedPrice   float64 `json:"marked_price"`
	DiscountPrice float64 `json:"discount_price"`
	ImageURL      *string `json:"image_url,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// Validate validates CreateServiceRequest.
func (r *CreateServiceRequest) Validate() error {
	if strings.TrimSpace(r.CategoryID) == "" {
		return errors.New("category_id is required")
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxServiceNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	if r.MarkedPrice <= 0 {
		return errors.New("marked_price must be > 0")
	}
	if r.DiscountPrice < 0 {
		return errors.New("discount_price cannot be negative")
	}
	if r.DiscountPrice > r.MarkedPrice {
		return errors.New("discount_price cannot exceed marked_price")
	}
	return nil
}

// UpdateServiceRequest represents parameters to update a Service.
type UpdateServiceRequest struct {
	CategoryID    *string  `json:"category_id,omitempty"`
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	MarkedPrice   *float64 `json:"marked_price,omitempty"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	ImageURL      *string  `json:"image_url,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// HasUpdates reports whether any field is set in UpdateServiceRequest.
func (r *UpdateServiceRequest) HasUpdates() bool {
	return r.CategoryID != nil || r.Name != nil || r.Description != nil ||
		r.MarkedPrice != nil ||
		r.DiscountPrice != nil ||
		r.ImageURL != nil ||
		r.IsActive != nil
}

// Validate validates UpdateServiceRequest, ensuring at least one field is set and values are sane.
func (r *UpdateServiceRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.CategoryID != nil && strings.TrimSpace(*r.CategoryID) == "" {
		return errors.New("category_id cannot be empty")
	}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		if n == "" {
			return errors.New("name cannot be empty")
		}
		if utf8.RuneCountInString(n) > maxServiceNameLen {
			return errors.New("name cannot exceed 255 characters")
		}
	}
	if r.MarkedPrice != nil && *r.MarkedPrice <= 0 {
		return errors.New("marked_price must be > 0")
	}
	if r.DiscountPrice != nil && *r.DiscountPrice < 0 {
		return errors.New("discount_price cannot be negative")
	}
	return nil
}
