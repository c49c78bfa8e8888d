package apperr

import (
	"log"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// Body is the JSON shape of every error response.
type Body struct {
	Error   Kind   `json:"error"`
	Message string `json:"message"`
	Fields  Fields `json:"fields,omitempty"`
}

// Abort writes err as a JSON response and stops the handler chain.
// Internal causes are logged with the request id, never returned to the client.
func Abort(c *gin.Context, err error) {
	e := From(err)
	if e.Kind == KindInternal {
		log.Printf("request_id=%s method=%s path=%s error=%q", c.GetString(RequestIDKey), c.Request.Method, c.FullPath(), causeOf(e))
	}
	c.AbortWithStatusJSON(e.Kind.HTTPStatus(), Body{Error: e.Kind, Message: e.Message, Fields: e.Fields})
}

func causeOf(e *Error) string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}
