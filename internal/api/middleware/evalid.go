package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/specfn/internal/shared/id"
)

// EvalIDHeader carries the evaluation id back to the caller.
const EvalIDHeader = "X-Eval-ID"

const evalIDKey = "eval_id"

// EvalID stamps every request with a fresh eval_* ULID, stored in the gin
// context and echoed in the response header.
func EvalID() gin.HandlerFunc {
	return func(c *gin.Context) {
		eid := id.NewEvalID().String()
		c.Set(evalIDKey, eid)
		c.Header(EvalIDHeader, eid)
		c.Next()
	}
}

// GetEvalID returns the id set by EvalID, or "" outside that middleware.
func GetEvalID(c *gin.Context) string {
	return c.GetString(evalIDKey)
}
