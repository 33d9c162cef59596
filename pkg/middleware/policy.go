package middleware

import (
	"github.com/labstack/echo/v4"

	"PlacementPortal/internal/identity"
	"PlacementPortal/pkg/apperrors"
	"PlacementPortal/pkg/response"
)

// Predicate is one authorization rule evaluated against the authenticated
// identity. A nil result allows; any error denies with that reason.
type Predicate func(c echo.Context, user *identity.User) error

// OwnerExtractor pulls the owner reference a route compares the caller
// against. Each route supplies its own typed accessor instead of a
// stringly-typed field name.
type OwnerExtractor func(c echo.Context) (string, error)

// PathParam extracts the owner reference from a path parameter.
func PathParam(name string) OwnerExtractor {
	return func(c echo.Context) (string, error) {
		v := c.Param(name)
		if v == "" {
			return "", apperrors.Validation("missing " + name + " parameter")
		}
		return v, nil
	}
}

// RequireRole allows only the listed roles.
func RequireRole(roles ...identity.Role) Predicate {
	allowed := make(map[identity.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c echo.Context, user *identity.User) error {
		if _, ok := allowed[user.Role]; ok {
			return nil
		}
		return apperrors.Authorization("insufficient role")
	}
}

// RequireSelfOrAdmin allows admins, or callers whose own identity matches the
// owner reference the extractor yields.
func RequireSelfOrAdmin(owner OwnerExtractor) Predicate {
	return func(c echo.Context, user *identity.User) error {
		if user.IsAdmin() {
			return nil
		}
		ref, err := owner(c)
		if err != nil {
			return err
		}
		if ref == user.ID.Hex() {
			return nil
		}
		return apperrors.Authorization("not the resource owner")
	}
}

// RequirePrivilegedRole allows the given role or an admin.
func RequirePrivilegedRole(role identity.Role) Predicate {
	return func(c echo.Context, user *identity.User) error {
		if user.Role == role || user.IsAdmin() {
			return nil
		}
		return apperrors.Authorization("requires " + string(role) + " privilege")
	}
}

// Chain adapts predicates into echo middleware. Predicates run in declared
// order and the first denial is surfaced; nothing aggregates.
func Chain(preds ...Predicate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := identity.FromContext(c)
			if user == nil {
				return response.Error(c, apperrors.Authentication("missing credential"))
			}
			for _, pred := range preds {
				if err := pred(c, user); err != nil {
					return response.Error(c, err)
				}
			}
			return next(c)
		}
	}
}
