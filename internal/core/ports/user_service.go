package ports

import (
	"context"

	"github.com/enersim/energy-simulator/internal/core/domain"
)

// UpdateProfileInput carries the editable profile fields. Password and roles
// are not editable through the profile surface.
type UpdateProfileInput struct {
	Username string
	Email    string
	Company  string
	Country  string
}

// UserService exposes profile management and the admin user listing.
type UserService interface {
	Profile(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
