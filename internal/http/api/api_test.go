package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMountGroup_ResolvesEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var hits []string
	trace := func(c *gin.Context) { hits = append(hits, "mw"); c.Next() }

	MountGroup(r, GroupConfig{Prefix: "/api/test", Middleware: []gin.HandlerFunc{trace}},
		ModuleFunc(func(c *Controller) {
			c.GET("/ok", func(ctx *gin.Context) (any, *APIError) {
				return gin.H{"status": "ok"}, nil
			})
			c.PATCH("/fail", func(ctx *gin.Context) (any, *APIError) {
				return nil, BadRequest("nope")
			})
		}),
	)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/test/ok", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPatch, "/api/test/fail", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"nope"}`, w.Body.String())

	assert.Equal(t, []string{"mw", "mw"}, hits)
}

func TestAPIError(t *testing.T) {
	err := Internal("boom")
	assert.Equal(t, http.StatusInternalServerError, err.Code)
	assert.EqualError(t, err, "boom")
}
