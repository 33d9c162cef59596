package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"PlacementPortal/internal/identity"
	"PlacementPortal/pkg/apperrors"
	"PlacementPortal/pkg/response"
)

type identityLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*identity.User, error)
}

// Authenticator resolves bearer tokens to live identities. The raw token is
// never logged.
type Authenticator struct {
	tokens *identity.TokenManager
	users  identityLookup
	logger *zap.Logger
}

func NewAuthenticator(tokens *identity.TokenManager, users *identity.Repository, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, logger: logger}
}

func newAuthenticator(tokens *identity.TokenManager, users identityLookup, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, logger: logger}
}

// Authenticate requires a valid bearer token resolving to an existing active
// identity and attaches that identity to the request context.
func (a *Authenticator) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := a.resolve(c)
		if err != nil {
			return response.Error(c, err)
		}
		c.Set(identity.ContextKey, user)
		return next(c)
	}
}

// Optional attaches the identity when a valid token is presented but never
// blocks the request. Used on public read routes.
func (a *Authenticator) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if user, err := a.resolve(c); err == nil {
			c.Set(identity.ContextKey, user)
		}
		return next(c)
	}
}

func (a *Authenticator) resolve(c echo.Context) (*identity.User, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, apperrors.Authentication("missing credential")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.Authentication("invalid authorization header")
	}

	claims, err := a.tokens.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, apperrors.Authentication("invalid or expired credential")
	}
	oid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperrors.Authentication("invalid or expired credential")
	}

	user, err := a.users.FindByID(c.Request().Context(), oid)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	if user == nil {
		return nil, apperrors.Authentication("unknown identity")
	}
	if !user.IsActive {
		return nil, apperrors.Authorization("account is inactive")
	}
	return user, nil
}
