package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/middleware"
)

// ValidateForm parses the submitted form of namespace ns with schema s and
// stores the Result[T] in the request context. With middleware.RejectInvalid
// an invalid submission is answered with 400 and the issues payload.
func ValidateForm[T any](ns string, s formpath.Schema[T], opts ...middleware.Option) gin.HandlerFunc {
	cfg := middleware.NewConfig(opts...)
	return func(c *gin.Context) {
		res := middleware.ValidateRequest(c.Request, ns, s, cfg)
		if !res.Success && cfg.RejectInvalid {
			c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorPayload(ns, res.Issues))
			return
		}
		// store result in request context
		c.Request = c.Request.WithContext(middleware.ContextWithResult(c.Request.Context(), res))
		c.Next()
	}
}

// GetResult fetches Result[T] from gin.Context.
func GetResult[T any](c *gin.Context) (formpath.Result[T], bool) {
	return middleware.ResultFromContext[T](c.Request.Context())
}
