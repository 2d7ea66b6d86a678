package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"phonebook/internal/auth"
	apperrors "phonebook/internal/errors"
	"phonebook/internal/model"
	"phonebook/internal/repository"
)

const (
	accountContextKey  = "account"
	rawTokenContextKey = "session_raw_token"
)

// notAuthorized is the single response for every gateway failure; which
// stage rejected the request is deliberately not observable.
func notAuthorized() *echo.HTTPError {
	he := apperrors.MapErrorToHTTP(apperrors.ErrNotAuthorized)
	return echo.NewHTTPError(http.StatusUnauthorized, he.ToErrorResponse())
}

// JWT is the first gateway stage: bearer extraction, signature and expiry.
// Anything short of a well-signed unexpired token yields the uniform 401.
func JWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.SessionClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return notAuthorized()
		},
	})
}

// SessionGuard is the second gateway stage: it resolves the validated
// claims to an account and requires the presented token to equal the
// account's stored session token. A token copied before logout or an
// earlier login dies here even though its signature is still good. On
// success the account is attached to the request context.
func SessionGuard(users repository.UserRepository, tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return notAuthorized()
			}
			claims, ok := token.Claims.(*auth.SessionClaims)
			if !ok {
				return notAuthorized()
			}

			accountID, err := claims.AccountID()
			if err != nil {
				return notAuthorized()
			}

			ctx := c.Request().Context()

			// Fast-path rejection of tokens revoked by logout; fail-safe,
			// the store comparison below remains authoritative.
			if revoked, _ := tokens.IsSessionTokenBlacklisted(ctx, claims.ID); revoked {
				return notAuthorized()
			}

			raw := bearerToken(c)
			if raw == "" {
				return notAuthorized()
			}

			user, err := users.FindByID(ctx, accountID)
			if err != nil {
				return notAuthorized()
			}

			if user.SessionToken == nil || *user.SessionToken != raw {
				return notAuthorized()
			}

			c.Set(accountContextKey, user)
			c.Set(rawTokenContextKey, raw)
			return next(c)
		}
	}
}

// CurrentAccount returns the account resolved by the gateway, or nil.
func CurrentAccount(c echo.Context) *model.User {
	user, _ := c.Get(accountContextKey).(*model.User)
	return user
}

// RawToken returns the bearer token the gateway accepted for this request.
func RawToken(c echo.Context) string {
	raw, _ := c.Get(rawTokenContextKey).(string)
	return raw
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
