package persistence

import (
	"context"
	"errors"

	"github.com/rasayana/storefront/internal/domain"
)

// Adapter is the only component touching durable storage. It reads and writes
// the whole per-owner state blob as JSON.
type Adapter interface {
	Read(ctx context.Context, ownerID string) (*domain.PersistedState, error)
	Write(ctx context.Context, ownerID string, state *domain.PersistedState) error
	Delete(ctx context.Context, ownerID string) error
}

var ErrNotFound = errors.New("no state stored for owner")

func stateKey(ownerID string) string {
	return "storefront:state:" + ownerID
}
