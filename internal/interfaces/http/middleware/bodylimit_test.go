package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	newRouter := func(limit int64) *gin.Engine {
		router := gin.New()
		router.Use(BodyLimit(limit))
		router.POST("/test", func(c *gin.Context) {
			data, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.Status(http.StatusRequestEntityTooLarge)
				return
			}
			c.String(http.StatusOK, "%d", len(data))
		})
		return router
	}

	t.Run("allows a body under the limit", func(t *testing.T) {
		router := newRouter(64)
		req := httptest.NewRequest("POST", "/test", strings.NewReader("small body"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "10", w.Body.String())
	})

	t.Run("rejects a declared oversized body", func(t *testing.T) {
		router := newRouter(8)
		req := httptest.NewRequest("POST", "/test", strings.NewReader("this body is definitely too large"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_REQUEST_TOO_LARGE")
	})

	t.Run("caps streaming bodies with unknown length", func(t *testing.T) {
		router := newRouter(8)
		req := httptest.NewRequest("POST", "/test", strings.NewReader("this body is definitely too large"))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
