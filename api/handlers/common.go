package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"socialgw/api/middleware"
	"socialgw/services"

	"github.com/gin-gonic/gin"
)

const serviceName = "socialgw"

// respondUpstreamError транслирует ошибку похода в бэкенд клиенту.
// Статус и message бэкенда уходят как есть, сетевые сбои прячутся за 500
// с общим сообщением - stack trace наружу не попадает.
func respondUpstreamError(c *gin.Context, operation string, err error) {
	var upstreamErr *services.UpstreamError
	if errors.As(err, &upstreamErr) {
		c.JSON(upstreamErr.Status, gin.H{"message": upstreamErr.Message})
		return
	}

	var netErr *services.NetworkError
	if errors.As(err, &netErr) {
		log.Printf("%s: backend unreachable: %v", operation, netErr.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to reach the server"})
		return
	}

	log.Printf("%s: %v", operation, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}

// observeUpstream регистрирует исход операции в метриках
func observeUpstream(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		var upstreamErr *services.UpstreamError
		if errors.As(err, &upstreamErr) {
			status = strconv.Itoa(upstreamErr.Status)
		} else {
			status = "error"
		}
	}
	middleware.RecordUpstreamOperation(operation, status, serviceName, time.Since(start))
}

func sessionToken(c *gin.Context) string {
	token, _ := c.Get("token")
	if s, ok := token.(string); ok {
		return s
	}
	return ""
}

func sessionUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if s, ok := userID.(string); ok {
		return s
	}
	return ""
}
