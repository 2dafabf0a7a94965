package response

import (
	"github.com/gin-gonic/gin"

	"github.com/yudapratama/go-auth-api/pkg/apperrors"
)

// Envelope is the JSON body every endpoint returns.
// Success: {success:true, message?, data?}
// Failure: {success:false, error:{message, type, details?, stack?}}
type Envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Details any    `json:"details,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Success writes a success envelope with the given status.
func Success(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Message writes a success envelope carrying only a message.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: true, Message: message})
}

// Fail writes a failure envelope for a tagged application error. Stack detail
// from wrapped causes is exposed only when includeStack is set (non-production).
func Fail(c *gin.Context, err *apperrors.Error, includeStack bool) {
	body := &ErrorBody{Message: err.Message, Type: string(err.Type), Details: err.Details}
	if includeStack && err.Err != nil {
		body.Stack = err.Err.Error()
	}
	c.JSON(err.Status(), Envelope{Success: false, Error: body})
}

// AbortFail is Fail plus request abortion, for middleware use.
func AbortFail(c *gin.Context, err *apperrors.Error) {
	body := &ErrorBody{Message: err.Message, Type: string(err.Type), Details: err.Details}
	c.AbortWithStatusJSON(err.Status(), Envelope{Success: false, Error: body})
}
