package credentials

import (
	"context"
	"strings"
	"time"

	"github.com/teemow/ga4mcp/internal/apperrors"
)

// Connection is one stored GA connection of a user.
type Connection struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	RefreshToken string    `json:"refresh_token"`
	PropertyID   *string   `json:"property_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasProperty reports whether the connection points at a property.
func (c Connection) HasProperty() bool {
	return c.PropertyID != nil && strings.TrimSpace(*c.PropertyID) != ""
}

// Store lists the connections of a user ordered by created_at, then id.
type Store interface {
	ListConnections(ctx context.Context, userID string) ([]Connection, error)
}

// Credentials are the resolved refresh token and default property of a user.
type Credentials struct {
	RefreshToken string
	PropertyID   string
}

// Resolver selects the credentials to use for a user.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the credentials of the first connection of userID that has
// a property id.
func (r *Resolver) Resolve(ctx context.Context, userID string) (Credentials, error) {
	conns, err := r.store.ListConnections(ctx, userID)
	if err != nil {
		return Credentials{}, &apperrors.Error{
			Kind:    apperrors.KindCredentialStoreFailed,
			Op:      "credentials.Resolve",
			Message: "credential lookup failed",
			Err:     err,
		}
	}
	if len(conns) == 0 {
		return Credentials{}, apperrors.New(apperrors.KindCredentialNotFound, "credentials.Resolve",
			"User %s not found in credential store", userID).WithField("user_id")
	}

	for _, c := range conns {
		if c.HasProperty() {
			return Credentials{
				RefreshToken: c.RefreshToken,
				PropertyID:   strings.TrimSpace(*c.PropertyID),
			}, nil
		}
	}
	return Credentials{}, apperrors.New(apperrors.KindNoValidProperty, "credentials.Resolve",
		"No property_id found for user %s", userID).WithField("user_id")
}
