package preference

import (
	"context"
	"errors"

	"github.com/draftly/post-scheduler/internal/domain"
)

var ErrNotFound = errors.New("preference not found")

//go:generate go run go.uber.org/mock/mockgen -source=preference.go -destination=mocks/mock.go
type Repository interface {
	// Get returns the scheduling preferences stored for a user
	Get(ctx context.Context, userID string) (*domain.Preference, error)

	// Upsert creates or replaces a user's scheduling preferences
	Upsert(ctx context.Context, pref domain.Preference) error
}
