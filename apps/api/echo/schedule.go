package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campushq/backoffice/core"
	"github.com/campushq/backoffice/core/schedule"
)

type scheduleApi struct {
	svc      schedule.ServiceInterface
	validate *validator.Validate
}

func registerScheduleAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc schedule.ServiceInterface,
	validate *validator.Validate,
) {
	api := scheduleApi{
		svc:      svc,
		validate: validate,
	}

	eg := g.Group("/events", jwt)
	eg.POST("", api.create, adminMiddleware())
	eg.POST("/batch", api.createBatch, adminMiddleware())
	eg.POST("/check-conflicts", api.checkConflicts)
	eg.GET("", api.query)

	// multi-select toolbar operations
	bg := eg.Group("/bulk", adminMiddleware())
	bg.POST("/delete", api.bulkDelete)
	bg.POST("/cancel", api.bulkCancel)
	bg.POST("/restore", api.bulkRestore)
	bg.POST("/reassign", api.bulkReassign)
	bg.POST("/shift", api.bulkShift)
	bg.POST("/duplicate", api.bulkDuplicate)

	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update, adminMiddleware())
	eg.DELETE("/:id", api.destroy, adminMiddleware())
	eg.POST("/:id/move", api.move, adminMiddleware())
	eg.POST("/:id/cancel", api.cancel, adminMiddleware())
	eg.POST("/:id/restore", api.restore, adminMiddleware())
}

// Handlers

func (api *scheduleApi) create(ctx echo.Context) error {
	var data schedule.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evt, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *scheduleApi) createBatch(ctx echo.Context) error {
	var data BatchCreateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BatchCreateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evts, err := api.svc.CreateBatch(ctx.Request().Context(), data.Events)
	if err != nil {
		return errors.Wrap(err, "creating events")
	}
	return ctx.JSON(http.StatusCreated, evts)
}

// checkConflicts is the speculative conflict probe: it never mutates anything,
// so the grid can call it repeatedly while a user drags.
func (api *scheduleApi) checkConflicts(ctx echo.Context) error {
	var probe schedule.ConflictProbe
	if err := ctx.Bind(&probe); err != nil {
		return errors.Wrap(err, "binding to ConflictProbe")
	}
	if err := probe.Validate(api.validate); err != nil {
		return err
	}

	conflicts, err := api.svc.CheckConflicts(ctx.Request().Context(), probe)
	if err != nil {
		return errors.Wrap(err, "checking conflicts")
	}
	return ctx.JSON(http.StatusOK, ConflictCheckResponse{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    conflicts,
	})
}

func (api *scheduleApi) query(ctx echo.Context) error {
	filter := new(schedule.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []schedule.Event{})
	}
	filter.Clean()

	evts, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if evts == nil {
		evts = []schedule.Event{}
	}
	return ctx.JSON(http.StatusOK, evts)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	evt, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *scheduleApi) update(ctx echo.Context) error {
	var data schedule.UpdateEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evt, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evt)
}

// move is the drop target of the week grid's drag-to-reschedule: times shift,
// everything else stays. A detected conflict surfaces as 409 unless forced.
func (api *scheduleApi) move(ctx echo.Context) error {
	var data schedule.MoveEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MoveEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evt, err := api.svc.Move(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) cancel(ctx echo.Context) error {
	var data CancelRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CancelRequest")
	}

	evt, err := api.svc.Cancel(ctx.Request().Context(), ctx.Param("id"), data.Reason)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *scheduleApi) restore(ctx echo.Context) error {
	evt, err := api.svc.Restore(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *scheduleApi) bulkDelete(ctx echo.Context) error {
	var data BulkIDsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkIDsRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), data.IDs...); err != nil {
		return errors.Wrap(err, "deleting events")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) bulkCancel(ctx echo.Context) error {
	var data schedule.BulkCancel
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkCancel")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.BulkCancel(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) bulkRestore(ctx echo.Context) error {
	var data BulkIDsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkIDsRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.BulkRestore(ctx.Request().Context(), data.IDs...); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) bulkReassign(ctx echo.Context) error {
	var data schedule.BulkReassign
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkReassign")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.BulkReassign(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) bulkShift(ctx echo.Context) error {
	var data schedule.BulkShift
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkShift")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if data.Days == 0 && data.Minutes == 0 {
		return core.NewValidationError(
			errors.New("nothing to shift"),
			core.FieldError{Field: "days", Error: "days and minutes cannot both be zero"},
		)
	}

	if err := api.svc.BulkShift(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) bulkDuplicate(ctx echo.Context) error {
	var data schedule.BulkDuplicate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkDuplicate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evts, err := api.svc.BulkDuplicate(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, evts)
}

type (
	BatchCreateRequest struct {
		Events []schedule.NewEvent `json:"events" validate:"required,min=1"`
	}

	CancelRequest struct {
		Reason string `json:"reason"`
	}

	BulkIDsRequest struct {
		IDs []string `json:"ids" validate:"required,min=1"`
	}

	ConflictCheckResponse struct {
		HasConflicts bool                `json:"has_conflicts"`
		Conflicts    []schedule.Conflict `json:"conflicts"`
	}
)

func (br *BatchCreateRequest) Validate(validate *validator.Validate) error {
	if err := validate.Struct(br); err != nil {
		return err
	}
	for i := range br.Events {
		if err := br.Events[i].Validate(validate); err != nil {
			return err
		}
	}
	return nil
}

func (br BulkIDsRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(br)
}
