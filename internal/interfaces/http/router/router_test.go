package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	group := NewDomainGroup("accounting", "/accounting").
		GET("/invoices", okHandler("list")).
		POST("/invoices/:id/accept", okHandler("accepted"))
	r.Register(group)
	r.Setup()

	t.Run("routes live under the version prefix", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v2/accounting/invoices", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "list", w.Body.String())
	})

	t.Run("unregistered path is 404", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/accounting/invoices", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRouterMiddleware(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	var order []string
	r.Use(func(c *gin.Context) {
		order = append(order, "api")
		c.Next()
	})

	group := NewDomainGroup("accounting", "/accounting")
	group.Use(func(c *gin.Context) {
		order = append(order, "group")
		c.Next()
	})
	group.GET("/invoices", func(c *gin.Context) {
		order = append(order, "handler")
		c.Status(http.StatusOK)
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/accounting/invoices", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"api", "group", "handler"}, order)
}

func TestDomainGroupName(t *testing.T) {
	group := NewDomainGroup("accounting", "/accounting")
	assert.Equal(t, "accounting", group.Name())
}
