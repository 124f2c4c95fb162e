package echomw_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formpath"
	g "github.com/reoring/formpath/dsl"
	"github.com/reoring/formpath/middleware"
	echomw "github.com/reoring/formpath/middleware/echo"
)

func TestValidateForm(t *testing.T) {
	s := g.Object().Field("thing", g.String().Min(1)).MustBuild()
	e := echo.New()
	e.POST("/", func(c echo.Context) error {
		res, ok := echomw.GetResult[map[string]any](c)
		require.True(t, ok)
		return c.String(http.StatusOK, res.Data["thing"].(string))
	}, echomw.ValidateForm[map[string]any]("f", s, middleware.RejectInvalid()))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("f.thing=content"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "content", rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("f.thing="))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"f.thing"`)
	assert.Contains(t, rec.Body.String(), formpath.CodeTooSmall)
}
