package echoapi

import (
	"context"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    core.Conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	contextUserKey = "user"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	TokenUse     string    `json:"use,omitempty"`
	Email        string    `json:"email,omitempty"`
	FullName     string    `json:"full_name,omitempty"`
	Role         user.Role `json:"role,omitempty"`
	IsStudent    bool      `json:"is_student,omitempty"`
	IsInstructor bool      `json:"is_instructor,omitempty"`
	IsAdmin      bool      `json:"is_admin,omitempty"`
}

func (c Claims) UserID() (int, error) {
	return strconv.Atoi(c.Subject)
}

// GetUserClaims builds the claims for a token of the given use.
func GetUserClaims(usr user.User, use string, delta time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			ExpiresAt: now.Add(delta).Unix(),
			IssuedAt:  now.Unix(),
		},
		TokenUse:     use,
		Email:        usr.Email,
		FullName:     usr.FullName,
		Role:         usr.Role,
		IsStudent:    usr.IsStudent(),
		IsInstructor: usr.IsInstructor(),
		IsAdmin:      usr.IsAdmin(),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

// GenerateTokenPair issues the access+refresh token pair for the user.
func GenerateTokenPair(usr user.User) (access, refresh string, err error) {
	if access, err = GenerateToken(GetUserClaims(usr, tokenUseAccess, core.Conf.Server.AccessTokenDelta)); err != nil {
		return "", "", err
	}
	if refresh, err = GenerateToken(GetUserClaims(usr, tokenUseRefresh, core.Conf.Server.RefreshTokenDelta)); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func authenticate(ctx context.Context, email, pwd string, svc user.Service) (user.User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errAuthenticationFailed
		}
		return user.User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return user.User{}, errAuthenticationFailed
	}
	if !usr.Active() {
		return user.User{}, errAccountDeactivated
	}
	if usr, err = svc.SetLastLogin(ctx, usr); err != nil {
		return user.User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

// parseToken validates a raw token string against the app signing key.
func parseToken(raw string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != appJWTConfig.SigningMethod {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return appJWTConfig.SigningKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errUnauthorized
	}
	return claims, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc user.Service, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	uid, err := claims.UserID()
	if err != nil {
		return user.User{}, errUnauthorized
	}
	usr, err := svc.GetByID(ctx.Request().Context(), uid)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func refreshTokenPair(ctx context.Context, refresh string, svc user.Service) (string, string, error) {
	claims, err := parseToken(refresh)
	if err != nil {
		return "", "", err
	}
	if claims.TokenUse != tokenUseRefresh {
		return "", "", errUnauthorized
	}

	uid, err := claims.UserID()
	if err != nil {
		return "", "", errUnauthorized
	}
	usr, err := svc.GetByID(ctx, uid)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return "", "", errUnauthorized
		}
		return "", "", errors.Wrap(err, "finding user by ID")
	}

	// check if user is still active
	if !usr.Active() {
		return "", "", errAccountDeactivated
	}
	return GenerateTokenPair(usr)
}
