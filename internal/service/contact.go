package service

import (
	"context"

	"github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/domain/model"
)

// ContactMessageRepository is the persistence surface ContactService needs.
type ContactMessageRepository interface {
	Create(ctx context.Context, req *model.CreateContactMessageRequest) (*model.ContactMessage, error)
	List(ctx context.Context, limit, offset int) ([]*model.ContactMessage, error)
}

// ContactService records public contact form submissions and exposes them to admins.
type ContactService struct {
	messages ContactMessageRepository
}

// NewContactService constructs a new ContactService.
func NewContactService(messages ContactMessageRepository) *ContactService {
	return &ContactService{messages: messages}
}

// Submit records a contact form submission. No authentication required.
func (s *ContactService) Submit(ctx context.Context, req *model.CreateContactMessageRequest) (*model.ContactMessage, error) {
	return s.messages.Create(ctx, req)
}

// List returns submissions for review. Admin only.
func (s *ContactService) List(ctx context.Context, actor *auth.Profile, limit, offset int) ([]*model.ContactMessage, error) {
	if actor == nil || actor.Role != auth.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.messages.List(ctx, limit, offset)
}
