package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campushq/backoffice/core/group"
)

type groupApi struct {
	svc      group.ServiceInterface
	validate *validator.Validate
}

func registerGroupAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc group.ServiceInterface,
	validate *validator.Validate,
) {
	api := groupApi{
		svc:      svc,
		validate: validate,
	}

	gg := g.Group("/groups", jwt)
	gg.POST("", api.create, adminMiddleware())
	gg.GET("", api.query)
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:id", api.update, adminMiddleware())
	gg.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) query(ctx echo.Context) error {
	groups, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	grp, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	var data group.UpdateGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return ctx.NoContent(http.StatusNoContent)
}
