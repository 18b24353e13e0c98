package handler_test

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/trade-journal/internal/handler"
)

func TestAuthRoutesRegistered(t *testing.T) {
	r := gin.New()
	v1 := r.Group("/api/v1")
	handler.NewAuthHandler(nil).RegisterRoutes(v1, stubAuth(1))

	want := map[string]string{
		"/api/v1/auth/register": "POST",
		"/api/v1/auth/login":    "POST",
		"/api/v1/auth/refresh":  "POST",
		"/api/v1/auth/me":       "GET",
	}
	got := make(map[string]string)
	for _, route := range r.Routes() {
		got[route.Path] = route.Method
	}
	for path, method := range want {
		assert.Equal(t, method, got[path], path)
	}
}
