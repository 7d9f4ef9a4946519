// Package token issues single-use opaque tokens (email confirmation, owner
// approval links) with metadata and an expiry.
package token

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var ErrInvalidToken = apperror.InvalidArgument("token is invalid or has expired")

// Purposes keep tokens issued for one flow from being redeemed in another.
const (
	PurposeEmailConfirm  = "email_confirm"
	PurposeOwnerApproval = "owner_approval"
)

// Metadata is the data bound to a token at issue time.
type Metadata map[string]string

// Store keeps tokens until they are consumed or expire.
type Store interface {
	// Issue creates a token for purpose carrying meta, valid for ttl.
	Issue(ctx context.Context, purpose string, meta Metadata, ttl time.Duration) (string, error)
	// Peek returns the metadata without redeeming the token.
	Peek(ctx context.Context, purpose, token string) (Metadata, error)
	// Consume returns the metadata and deletes the token.
	Consume(ctx context.Context, purpose, token string) (Metadata, error)
}

func newToken() string {
	return uuid.NewString()
}
