package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/user"
)

type enrollmentApi struct {
	svc    enrollment.Service
	usrSvc user.Service
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc enrollment.Service, usrSvc user.Service) {
	api := enrollmentApi{svc: svc, usrSvc: usrSvc}

	ag := g.Group("", jwt)
	ag.POST("/courses/:id/enroll", api.enroll, rolesRequired(user.RoleStudent))
	ag.DELETE("/courses/:id/unenroll", api.unenroll, rolesRequired(user.RoleStudent))
	ag.GET("/student/enrollments", api.queryOwnEnrollments, rolesRequired(user.RoleStudent))
	ag.GET("/courses/:id/enrollments", api.queryRoster, rolesRequired(user.RoleAdmin, user.RoleInstructor))
}

func (api *enrollmentApi) enroll(ctx echo.Context) error {
	courseID, err := pathID(ctx)
	if err != nil {
		return err
	}
	student, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), student, courseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollmentApi) unenroll(ctx echo.Context) error {
	courseID, err := pathID(ctx)
	if err != nil {
		return err
	}
	student, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Unenroll(ctx.Request().Context(), student, courseID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "unenrolled from course"})
}

func (api *enrollmentApi) queryOwnEnrollments(ctx echo.Context) error {
	student, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	enrs, err := api.svc.ListMyEnrollments(ctx.Request().Context(), student)
	if err != nil {
		return errors.Wrap(err, "querying student enrollments")
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *enrollmentApi) queryRoster(ctx echo.Context) error {
	courseID, err := pathID(ctx)
	if err != nil {
		return err
	}
	caller, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	entries, err := api.svc.ListCourseEnrollments(ctx.Request().Context(), caller, courseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, entries)
}
