//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxCategoryNameLen = 255
)

// ServiceCategory groups services shown on the landing page.
type ServiceCategory struct {
	ID          string    `json:"id"                    db:"id"`
	Name        string    `json:"name"                  db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Icon        *string   `json:"icon,omitempty"        db:"icon"`
	CreatedAt   time.Time `json:"created_at"            db:"created_at"`
}

// CreateCategoryRequest represents parameters to create a ServiceCategory.
type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

// Validate validates CreateCategoryRequest.
func (r *CreateCategoryRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	return nil
}

// UpdateCategoryRequest represents parameters to update a ServiceCategory.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

// HasUpdates reports whether any field is set in UpdateCategoryRequest.
func (r *UpdateCategoryRequest) HasUpdates() bool {
	return r.Name != nil || r.Description != nil || r.Icon != nil
}

// Validate validates UpdateCategoryRequest, ensuring at least one field is set.
func (r *UpdateCategoryRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		if n == "" {
			return errors.New("name cannot be empty")
		}
		if utf8.RuneCountInString(n) > maxCategoryNameLen {
			return errors.New("name cannot exceed 255 characters")
		}
	}
	return nil
}
