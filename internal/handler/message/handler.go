package message

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doctaba/telehealth-api/internal/handler"
	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/service/message"
)

type Handler struct {
	service *message.Service
}

func NewHandler(service *message.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	messages := r.Group("/messages")
	{
		messages.GET("", h.ListMessages)
		messages.POST("", h.SendMessage)
		messages.PATCH("/:id/read", h.MarkRead)
	}

	conversations := r.Group("/conversations")
	{
		conversations.GET("", h.ListConversations)
		conversations.GET("/:user1Id/:user2Id", h.GetConversation)
	}
}

func (h *Handler) ListMessages(c *gin.Context) {
	messages, err := h.service.ListForUser(c.Request.Context(), handler.CurrentUserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req model.CreateMessageRequest
	if !handler.BindJSON(c, &req, "message") {
		return
	}

	msg, err := h.service.Send(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "message")
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.SuccessResponse{Success: true})
}

func (h *Handler) ListConversations(c *gin.Context) {
	summaries, err := h.service.Conversations(c.Request.Context(), handler.CurrentUserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *Handler) GetConversation(c *gin.Context) {
	user1, ok := handler.ParamID(c, "user1Id", "user")
	if !ok {
		return
	}
	user2, ok := handler.ParamID(c, "user2Id", "user")
	if !ok {
		return
	}

	messages, err := h.service.Conversation(c.Request.Context(), user1, user2)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
