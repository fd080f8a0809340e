package echoapi

import (
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/user"
)

// rolesRequired gates an endpoint to callers holding a valid access token with
// one of the given roles. With no roles, any authenticated caller passes.
func rolesRequired(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			// refresh tokens cannot be used as access tokens
			if claims.TokenUse != tokenUseAccess {
				return errUnauthorized
			}
			if len(roles) == 0 {
				return next(ctx)
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

// optionalJWT sets the token in context when a valid bearer token is supplied,
// and lets the request through either way. Used on public endpoints whose
// payload varies for authenticated callers.
func optionalJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if strings.HasPrefix(auth, "Bearer ") {
				raw := strings.TrimPrefix(auth, "Bearer ")
				if claims, err := parseToken(raw); err == nil && claims.TokenUse == tokenUseAccess {
					token := jwt.NewWithClaims(jwt.GetSigningMethod(appJWTConfig.SigningMethod), claims)
					token.Valid = true
					ctx.Set(appJWTConfig.ContextKey, token)
				}
			}
			return next(ctx)
		}
	}
}
