//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID        string    `json:"id"              db:"id"`
	Name      string    `json:"name"            db:"name"`
	Email     string    `json:"email"           db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Message   string    `json:"message"         db:"message"`
	CreatedAt time.Time `json:"created_at"      db:"created_at"`
}

// CreateContactMessageRequest represents parameters to record a ContactMessage.
type CreateContactMessageRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Message string  `json:"message"`
}

// Validate validates CreateContactMessageRequest.
func (r *CreateContactMessageRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required and cannot be empty")
	}
	email := strings.TrimSpace(r.Email)
	if email == "" {
		return errors.New("email is required and cannot be empty")
	}
	if !strings.Contains(email, "@") {
		return errors.New("email is not valid")
	}
	if strings.TrimSpace(r.Message) == "" {
		return errors.New("message is required and cannot be empty")
	}
	return nil
}
