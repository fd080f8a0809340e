package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/user"
)

type reportApi struct {
	svc    report.Service
	usrSvc user.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc report.Service, usrSvc user.Service) {
	api := reportApi{svc: svc, usrSvc: usrSvc}

	ag := g.Group("", jwt)
	ag.GET("/dashboard", api.dashboard, rolesRequired())
	ag.GET("/statistics/users", api.userStatistics, rolesRequired(user.RoleAdmin))
	ag.GET("/statistics/courses", api.courseStatistics, rolesRequired(user.RoleAdmin, user.RoleInstructor))
	ag.GET("/statistics/enrollments", api.enrollmentStatistics, rolesRequired(user.RoleAdmin, user.RoleInstructor))
	ag.GET("/reports", api.reports, rolesRequired(user.RoleAdmin))
}

func (api *reportApi) dashboard(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	summary, err := api.svc.DashboardSummary(ctx.Request().Context(), usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *reportApi) userStatistics(ctx echo.Context) error {
	stats, err := api.svc.UserStatistics(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying user statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *reportApi) courseStatistics(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	stats, err := api.svc.CourseStatistics(ctx.Request().Context(), usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *reportApi) enrollmentStatistics(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	stats, err := api.svc.EnrollmentStatistics(ctx.Request().Context(), usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *reportApi) reports(ctx echo.Context) error {
	reports, err := api.svc.Reports(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	return ctx.JSON(http.StatusOK, reports)
}
