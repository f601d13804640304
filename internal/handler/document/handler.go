package document

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doctaba/telehealth-api/internal/handler"
	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/service/document"
)

type Handler struct {
	service *document.Service
}

func NewHandler(service *document.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/documents", h.ListDocuments)
	r.POST("/documents", h.CreateDocument)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	documents, err := h.service.ListForUser(c.Request.Context(), handler.CurrentUserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, documents)
}

func (h *Handler) CreateDocument(c *gin.Context) {
	var req model.CreateDocumentRequest
	if !handler.BindJSON(c, &req, "document") {
		return
	}

	doc, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}
