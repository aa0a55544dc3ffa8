package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/repository"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"

	// UserHeader carries the caller's user id when header auth is enabled.
	UserHeader = "x-user-id"
)

// Principal represents the authenticated caller.
type Principal struct {
	User *domain.User
}

// Actor returns the acting identity passed to services.
func (p *Principal) Actor() domain.Actor {
	return p.User.Actor()
}

// AuthMiddleware resolves the caller from a bearer token or the user header.
type AuthMiddleware struct {
	tokens          *TokenManager
	users           repository.UserRepository
	allowUserHeader bool
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, allowUserHeader bool) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, allowUserHeader: allowUserHeader}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	userID, err := m.subjectID(c)
	if err != nil {
		return err
	}

	user, err := m.users.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if _, err := domain.ParseRole(string(user.Role)); err != nil {
		return apperrors.NewUnauthorized("user has no valid role")
	}

	c.Locals(principalKey, &Principal{User: user})
	return c.Next()
}

func (m *AuthMiddleware) subjectID(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", apperrors.NewUnauthorized("invalid authorization header")
		}
		claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return "", apperrors.NewUnauthorized("invalid token")
		}
		return claims.SubjectID, nil
	}

	if m.allowUserHeader {
		if userID := strings.TrimSpace(c.Get(UserHeader)); userID != "" {
			if _, err := uuid.Parse(userID); err != nil {
				return "", apperrors.NewUnauthorized("invalid user header")
			}
			return userID, nil
		}
	}
	return "", apperrors.NewUnauthorized("missing credentials")
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.User != nil
}

// ActorFromContext returns the acting identity or an unauthorized error.
func ActorFromContext(c *fiber.Ctx) (domain.Actor, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return domain.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return principal.Actor(), nil
}
