package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doctaba/telehealth-api/internal/handler"
	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/service/appointment"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PATCH("/:id", h.UpdateStatus)
	}
}

// ListAppointments returns the caller's appointments, seen from the side
// of the caller's role.
func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.service.ListForUser(c.Request.Context(), handler.CurrentUserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req, "appointment") {
		return
	}

	appointment, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appointment)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}

	// status is checked by the service so an empty body reports the
	// missing field rather than a schema failure
	var req model.UpdateAppointmentStatusRequest
	if !handler.BindOptionalJSON(c, &req, "appointment") {
		return
	}

	appointment, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}
