package handlers

import (
	"log"
	"net/http"

	"socialgw/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSNotifications - WebSocket endpoint для push-уведомлений
func WSNotifications(c *gin.Context) {
	userID := sessionUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	services.GlobalWSConnManager.Add(userID, conn)
	defer services.GlobalWSConnManager.Remove(userID, conn)

	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"connected","message":"WebSocket connected"}`))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
