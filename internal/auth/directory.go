package auth

import (
	"context"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// Directory resolves subjects by id or username. It is the external
// user-directory collaborator: strict validation re-checks the subject on
// every request through it, so disabled accounts lose access immediately.
type Directory interface {
	GetByID(ctx context.Context, id string) (*domain.Subject, error)
	GetByUsername(ctx context.Context, username string) (*domain.Subject, error)
}
