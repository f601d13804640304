package video

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doctaba/telehealth-api/internal/handler"
	"github.com/doctaba/telehealth-api/internal/service/video"
)

type Handler struct {
	service *video.Service
}

func NewHandler(service *video.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/appointments/:id/video-room", h.GetRoom)
}

func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}

	room, err := h.service.Room(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}
