package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doctaba/telehealth-api/internal/handler"
)

// SessionResolver maps the request's session cookie to a user id
type SessionResolver interface {
	Resolve(c *gin.Context) (int64, bool, error)
}

// SessionAuth lets the request through only when it carries a live session,
// and stores the session's user id under handler.ContextUserID.
func SessionAuth(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok, err := sessions.Resolve(c)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("Unauthorized"))
			return
		}

		c.Set(handler.ContextUserID, userID)
		c.Next()
	}
}
