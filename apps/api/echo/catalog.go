package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/user"
)

type catalogApi struct {
	svc    catalog.Service
	usrSvc user.Service
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc catalog.Service, usrSvc user.Service) {
	api := catalogApi{svc: svc, usrSvc: usrSvc}

	// public read
	g.GET("/categories", api.queryCategories)
	g.GET("/categories/:id", api.retrieveCategory)
	g.GET("/courses", api.queryCourses)
	g.GET("/courses/:id", api.retrieveCourse, optionalJWT())

	// admin-only category writes
	ag := g.Group("", jwt)
	ag.POST("/categories", api.createCategory, rolesRequired(user.RoleAdmin))
	ag.PUT("/categories/:id", api.updateCategory, rolesRequired(user.RoleAdmin))
	ag.DELETE("/categories/:id", api.destroyCategory, rolesRequired(user.RoleAdmin))

	// instructor/admin course writes; ownership enforced by the service
	ag.POST("/courses/create", api.createCourse, rolesRequired(user.RoleAdmin, user.RoleInstructor))
	ag.PUT("/courses/:id/update", api.updateCourse, rolesRequired(user.RoleAdmin, user.RoleInstructor))
	ag.DELETE("/courses/:id/delete", api.destroyCourse, rolesRequired(user.RoleAdmin, user.RoleInstructor))
	ag.GET("/instructor/courses", api.queryOwnCourses, rolesRequired(user.RoleInstructor))
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Category handlers

func (api *catalogApi) queryCategories(ctx echo.Context) error {
	cats, err := api.svc.QueryCategories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *catalogApi) retrieveCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	cat, err := api.svc.GetCategory(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *catalogApi) createCategory(ctx echo.Context) error {
	var data catalog.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *catalogApi) updateCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data catalog.UpdateCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCategory")
	}

	cat, err := api.svc.UpdateCategory(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *catalogApi) destroyCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteCategory(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Course handlers

func (api *catalogApi) queryCourses(ctx echo.Context) error {
	courses, err := api.svc.QueryCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *catalogApi) retrieveCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	// the detail payload resolves is_enrolled for authenticated students
	var caller *user.User
	if usr, err := getContextUser(ctx, api.usrSvc); err == nil {
		caller = &usr
	}

	course, err := api.svc.GetCourse(ctx.Request().Context(), id, caller)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *catalogApi) createCourse(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data catalog.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	course, err := api.svc.CreateCourse(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *catalogApi) updateCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data catalog.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}

	course, err := api.svc.UpdateCourse(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *catalogApi) destroyCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.DeleteCourse(ctx.Request().Context(), actor, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) queryOwnCourses(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	courses, err := api.svc.QueryInstructorCourses(ctx.Request().Context(), actor.ID)
	if err != nil {
		return errors.Wrap(err, "querying instructor courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}
