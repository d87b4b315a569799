package middleware

import (
	"net/http"
	"strings"

	"socialgw/services"

	"github.com/gin-gonic/gin"
)

// SessionMiddleware - аутентификация по session cookie. Без валидного
// authToken защищенные API-маршруты отвечают 401 сразу, без ретраев.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := services.SessionFromRequest(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			c.Abort()
			return
		}
		c.Set("session", session)
		c.Set("user_id", session.UserID)
		c.Set("token", session.Token)
		c.Next()
	}
}

// RouteGuard - редиректы для страничных маршрутов: аноним с защищенной
// страницы уходит на логин, авторизованный с логина - на дашборд
func RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/metrics" || path == "/health" {
			c.Next()
			return
		}

		_, err := services.SessionFromRequest(c)
		authenticated := err == nil
		onAuthPage := strings.HasPrefix(path, "/auth")

		if !authenticated && !onAuthPage {
			c.Redirect(http.StatusTemporaryRedirect, "/auth/login")
			c.Abort()
			return
		}
		if authenticated && onAuthPage {
			c.Redirect(http.StatusTemporaryRedirect, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}
