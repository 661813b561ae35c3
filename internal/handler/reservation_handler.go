package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/openrota/roombooking-service/internal/dto"
	"github.com/openrota/roombooking-service/internal/models"
	"github.com/openrota/roombooking-service/internal/service"
)

type ReservationHandler struct {
	svc service.ReservationService
}

func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo) {
	rooms := e.Group("/api/v1/rooms")
	rooms.POST("/:id/reservations", h.CreateReservation)
	rooms.POST("/:id/conflicts", h.PreviewConflicts)

	reservations := e.Group("/api/v1/reservations")
	reservations.GET("/:id", h.GetReservation)
	reservations.PATCH("/:id", h.ModifyReservation)
	reservations.POST("/:id/accept", h.AcceptReservation)
	reservations.POST("/:id/reject", h.RejectReservation)
	reservations.POST("/:id/cancel", h.CancelReservation)
	reservations.DELETE("/:id", h.DeleteReservation)
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// mapError translates engine errors into HTTP status codes.
func mapError(err error) error {
	var validationErr *service.ValidationError
	var accessErr *service.AccessError
	var conflictErr *service.ConflictError

	switch {
	case errors.As(err, &validationErr):
		return echo.NewHTTPError(http.StatusBadRequest, validationErr.Reason)
	case errors.As(err, &accessErr):
		return echo.NewHTTPError(http.StatusForbidden, accessErr.Reason)
	case errors.As(err, &conflictErr):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, service.ErrReservationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoValidOccurrences):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrReservationNotPending), errors.Is(err, service.ErrReservationTerminal):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	roomID, err := pathID(c)
	if err != nil {
		return err
	}

	var req dto.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	reservation, err := h.svc.Create(c.Request().Context(), roomID, req.Data(), req.Actor(), req.Prebook)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) GetReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	reservation, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) ModifyReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req dto.ModifyReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	changed, err := h.svc.Modify(c.Request().Context(), id, req.Data(), req.Actor())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"changed": changed})
}

func (h *ReservationHandler) AcceptReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req dto.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Accept(c.Request().Context(), id, req.Actor()); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReservationHandler) RejectReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req dto.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Reject(c.Request().Context(), id, req.Actor(), req.Reason, false); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req dto.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Cancel(c.Request().Context(), id, req.Actor(), req.Reason, false); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReservationHandler) DeleteReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req dto.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Delete(c.Request().Context(), id, req.Actor()); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReservationHandler) PreviewConflicts(c echo.Context) error {
	roomID, err := pathID(c)
	if err != nil {
		return err
	}

	var req dto.PreviewConflictsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	data := service.BookingData{
		StartDT:         req.StartDT,
		EndDT:           req.EndDT,
		RepeatFrequency: models.RepeatFrequency(req.RepeatFrequency),
		RepeatInterval:  req.RepeatInterval,
	}
	classification, err := h.svc.PreviewConflicts(c.Request().Context(), roomID, data)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, classification)
}
