package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/domain"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Subject *domain.Subject
	Claims  *Claims
}

// Middleware adapts the authenticator to the fiber request pipeline.
type Middleware struct {
	authenticator *Authenticator
}

// NewMiddleware constructs middleware.
func NewMiddleware(authenticator *Authenticator) *Middleware {
	return &Middleware{authenticator: authenticator}
}

// Handle runs one authentication pass per inbound request. Anonymous callers
// continue; only strict-path policy violations become 401 responses.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	result := m.authenticator.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization), c.Path())

	switch result.Status {
	case StatusAuthenticated:
		c.Locals(principalKey, &Principal{Subject: result.Subject, Claims: result.Claims})
		return c.Next()
	case StatusRejected:
		switch result.Reason {
		case ReasonExpired:
			return apperrors.NewSessionExpired()
		case ReasonSuperseded:
			return apperrors.NewSessionSuperseded()
		case ReasonDirectoryUnavailable:
			return apperrors.NewServiceUnavailable("authentication temporarily unavailable")
		default:
			return apperrors.NewUnauthorized("unknown subject")
		}
	default:
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
