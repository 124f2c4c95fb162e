package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/middleware"
)

// ValidateForm parses the submitted form of namespace ns with schema s and
// stores the Result[T] in the request context. With middleware.RejectInvalid
// an invalid submission is answered with 400 and the issues payload.
func ValidateForm[T any](ns string, s formpath.Schema[T], opts ...middleware.Option) echo.MiddlewareFunc {
	cfg := middleware.NewConfig(opts...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := middleware.ValidateRequest(c.Request(), ns, s, cfg)
			if !res.Success && cfg.RejectInvalid {
				return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(ns, res.Issues))
			}
			ctx := middleware.ContextWithResult(c.Request().Context(), res)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetResult fetches Result[T] from echo.Context.
func GetResult[T any](c echo.Context) (formpath.Result[T], bool) {
	return middleware.ResultFromContext[T](c.Request().Context())
}
