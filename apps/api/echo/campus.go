package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campushq/backoffice/core/campus"
	"github.com/campushq/backoffice/core/schedule"
)

type campusApi struct {
	svc      campus.ServiceInterface
	schedSvc schedule.ServiceInterface
	validate *validator.Validate
}

func registerCampusAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc campus.ServiceInterface,
	schedSvc schedule.ServiceInterface,
	validate *validator.Validate,
) {
	api := campusApi{
		svc:      svc,
		schedSvc: schedSvc,
		validate: validate,
	}

	cg := g.Group("/campuses", jwt)
	cg.POST("", api.createCampus, adminMiddleware())
	cg.GET("", api.queryCampuses)
	cg.GET("/:id", api.retrieveCampus)
	cg.PUT("/:id", api.updateCampus, adminMiddleware())
	cg.DELETE("/:id", api.destroyCampus, adminMiddleware())

	rg := g.Group("/classrooms", jwt)
	rg.POST("", api.createClassroom, adminMiddleware())
	rg.GET("", api.queryClassrooms)
	rg.GET("/available", api.availableClassrooms)
	rg.GET("/:id", api.retrieveClassroom)
	rg.PUT("/:id", api.updateClassroom, adminMiddleware())
	rg.DELETE("/:id", api.destroyClassroom, adminMiddleware())
}

// Campus handlers

func (api *campusApi) createCampus(ctx echo.Context) error {
	var data campus.NewCampus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCampus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cp, err := api.svc.CreateCampus(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating campus")
	}
	return ctx.JSON(http.StatusCreated, cp)
}

func (api *campusApi) queryCampuses(ctx echo.Context) error {
	campuses, err := api.svc.QueryCampuses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying campuses")
	}
	if campuses == nil {
		campuses = []campus.Campus{}
	}
	return ctx.JSON(http.StatusOK, campuses)
}

func (api *campusApi) retrieveCampus(ctx echo.Context) error {
	cp, err := api.svc.GetCampus(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cp)
}

func (api *campusApi) updateCampus(ctx echo.Context) error {
	var data campus.UpdateCampus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCampus")
	}

	cp, err := api.svc.UpdateCampus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cp)
}

func (api *campusApi) destroyCampus(ctx echo.Context) error {
	if err := api.svc.DeleteCampuses(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting campus")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Classroom handlers

func (api *campusApi) createClassroom(ctx echo.Context) error {
	var data campus.NewClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassroom")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	room, err := api.svc.CreateClassroom(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, room)
}

func (api *campusApi) queryClassrooms(ctx echo.Context) error {
	filter := new(campus.ClassroomFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []campus.Classroom{})
	}

	rooms, err := api.svc.QueryClassrooms(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying classrooms")
	}
	if rooms == nil {
		rooms = []campus.Classroom{}
	}
	return ctx.JSON(http.StatusOK, rooms)
}

// availableClassrooms lists the classrooms free for a given window, backing
// the room picker on the event form.
func (api *campusApi) availableClassrooms(ctx echo.Context) error {
	var query AvailableClassroomsRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to AvailableClassroomsRequest")
	}
	if err := query.Validate(api.validate); err != nil {
		return err
	}

	rooms, err := api.schedSvc.AvailableClassrooms(
		ctx.Request().Context(),
		query.CampusID, query.Start, query.End, query.ExcludeEventID,
	)
	if err != nil {
		return errors.Wrap(err, "querying available classrooms")
	}
	if rooms == nil {
		rooms = []campus.Classroom{}
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *campusApi) retrieveClassroom(ctx echo.Context) error {
	room, err := api.svc.GetClassroom(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, room)
}

func (api *campusApi) updateClassroom(ctx echo.Context) error {
	var data campus.UpdateClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClassroom")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	room, err := api.svc.UpdateClassroom(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, room)
}

func (api *campusApi) destroyClassroom(ctx echo.Context) error {
	if err := api.svc.DeleteClassrooms(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting classroom")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type AvailableClassroomsRequest struct {
	CampusID       string    `query:"campus_id" validate:"required,uuid4"`
	Start          time.Time `query:"start_time" validate:"required"`
	End            time.Time `query:"end_time" validate:"required,gtfield=Start"`
	ExcludeEventID string    `query:"exclude_event_id" validate:"omitempty,uuid4"`
}

func (ar AvailableClassroomsRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(ar)
}
