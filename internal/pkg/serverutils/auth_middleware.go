package serverutils

import (
	"context"

	"clipboard-api-be/internal/entity"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier resolves a bearer token into the authenticated user.
// Implemented by the auth service (userinfo lookup with caching).
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*entity.User, error)
	// Enabled reports whether the server has an OAuth2 provider configured.
	Enabled() bool
}

const (
	LocalUser    = "user"
	LocalSubject = "subject"
	LocalToken   = "token"
)

func bearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}
	return authHeader[7:]
}

// OptionalAuth resolves the caller when a bearer token is present.
// An invalid token is still a 401; only a missing one means anonymous.
// When auth is disabled server-side every request is anonymous, even
// with a (stale) token attached.
func OptionalAuth(verifier TokenVerifier) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !verifier.Enabled() {
			return ctx.Next()
		}

		token := bearerToken(ctx)
		if token == "" {
			return ctx.Next()
		}

		user, err := verifier.VerifyToken(ctx.Context(), token)
		if err != nil {
			return err
		}

		ctx.Locals(LocalUser, user)
		ctx.Locals(LocalSubject, user.Subject)
		ctx.Locals(LocalToken, token)
		return ctx.Next()
	}
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(verifier TokenVerifier) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token := bearerToken(ctx)
		if token == "" {
			return NewHttpError(fiber.StatusUnauthorized, "Authentication required.")
		}

		user, err := verifier.VerifyToken(ctx.Context(), token)
		if err != nil {
			return err
		}

		ctx.Locals(LocalUser, user)
		ctx.Locals(LocalSubject, user.Subject)
		ctx.Locals(LocalToken, token)
		return ctx.Next()
	}
}

// CurrentUser returns the authenticated user set by the auth middleware,
// or nil for anonymous requests.
func CurrentUser(ctx *fiber.Ctx) *entity.User {
	if u, ok := ctx.Locals(LocalUser).(*entity.User); ok {
		return u
	}
	return nil
}

// CurrentToken returns the raw bearer token for the request, if any.
func CurrentToken(ctx *fiber.Ctx) string {
	if t, ok := ctx.Locals(LocalToken).(string); ok {
		return t
	}
	return ""
}
