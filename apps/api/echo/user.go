package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/user"
)

type userApi struct {
	svc user.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.Service) {
	api := userApi{svc: svc}

	// un-authed endpoints
	// TODO: rate limit `/password/forgot` & `/password/reset`
	g.POST("/register", api.register)
	g.POST("/login", api.login)
	g.POST("/auth/token-refresh", api.refreshToken)
	g.POST("/password/forgot", api.forgotPassword)
	g.POST("/password/reset", api.resetPassword)

	// authed endpoints
	ag := g.Group("", jwt)
	ag.GET("/profile", api.retrieveProfile, rolesRequired())
	ag.PUT("/profile", api.updateProfile, rolesRequired())
	ag.GET("/users", api.query, rolesRequired(user.RoleAdmin))
	ag.POST("/admin/create-instructor", api.createStaff, rolesRequired(user.RoleAdmin))
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.RegisterUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := authenticate(ctx.Request().Context(), data.Email, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	access, refresh, err := GenerateTokenPair(usr)
	if err != nil {
		return errors.Wrap(err, "generating token pair")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Message: "login successful",
		Access:  access,
		Refresh: refresh,
		User: AuthUser{
			Email:    usr.Email,
			FullName: usr.FullName,
			Role:     usr.Role,
		},
	})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	var data RefreshRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RefreshRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	access, refresh, err := refreshTokenPair(ctx.Request().Context(), data.Refresh, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token pair")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Access: access, Refresh: refresh})
}

func (api *userApi) forgotPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, MessageResponse{
		Message: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset with the new password."})
}

func (api *userApi) retrieveProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(usr); err != nil {
		return err
	}

	usr, err = api.svc.UpdateProfile(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	users, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) createStaff(ctx echo.Context) error {
	var data user.NewStaffUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStaffUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	usr, err := api.svc.CreateStaff(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating staff user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}
