package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"socialgw/config"
	"socialgw/models"
	"socialgw/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic"`
	Privacy    string `json:"privacidad"`
}

// backendAuthData - полезная нагрузка ответа бэкенда на login/register
type backendAuthData struct {
	Token string `json:"token"`
	User  struct {
		ID         string `json:"id"`
		Username   string `json:"username"`
		Email      string `json:"email"`
		ProfilePic string `json:"profilePic"`
	} `json:"user"`
}

var upstreamClient *services.UpstreamClient

// SetUpstreamClient внедряет клиент бэкенда при старте сервера
func SetUpstreamClient(client *services.UpstreamClient) {
	upstreamClient = client
	followService = services.NewFollowService(client)
	feedService = services.NewFeedService(client)
}

// Login - обработчик логина: валидация, проксирование, выдача cookie
func Login(c *gin.Context) {
	var loginRequest LoginRequest
	if err := c.ShouldBindJSON(&loginRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	if loginRequest.Email == "" || loginRequest.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	start := time.Now()
	raw, _, err := upstreamClient.DoJSON(c.Request.Context(), http.MethodPost, "/auth/login", "", loginRequest)
	observeUpstream("login", start, err)
	if err != nil {
		respondUpstreamError(c, "login", err)
		return
	}

	var envelope struct {
		Data backendAuthData `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "unexpected backend response"})
		return
	}

	data := envelope.Data
	if data.Token == "" || data.User.ID == "" || data.User.Username == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "incomplete authentication data"})
		return
	}

	profilePic := data.User.ProfilePic
	if profilePic == "" {
		profilePic = "default.jpg"
	}

	services.IssueSessionCookies(c, models.Session{
		UserID:     data.User.ID,
		Username:   data.User.Username,
		Token:      data.Token,
		ProfilePic: profilePic,
	})

	response := gin.H{
		"message": "login successful",
		"user": gin.H{
			"id":         data.User.ID,
			"username":   data.User.Username,
			"email":      data.User.Email,
			"profilePic": profilePic,
		},
	}
	// Сырой токен отдаем в теле только в development-режиме
	if !config.IsProduction() {
		response["token"] = data.Token
	}
	c.JSON(http.StatusOK, response)
}

// Register - обработчик регистрации
func Register(c *gin.Context) {
	var registerRequest RegisterRequest
	if err := c.ShouldBindJSON(&registerRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	if registerRequest.Username == "" || registerRequest.Email == "" || registerRequest.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username, email and password are required"})
		return
	}
	if len(registerRequest.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "password must be at least 6 characters long"})
		return
	}

	if registerRequest.ProfilePic == "" {
		registerRequest.ProfilePic = "default.jpg"
	}

	payload := gin.H{
		"username":     registerRequest.Username,
		"email":        registerRequest.Email,
		"password":     registerRequest.Password,
		"bio":          registerRequest.Bio,
		"profilePic":   registerRequest.ProfilePic,
		"privacidad":   registerRequest.Privacy,
		"followersIds": []string{},
		"followingIds": []string{},
		"blockedIds":   []string{},
		"chatIds":      []string{},
	}

	start := time.Now()
	raw, _, err := upstreamClient.DoJSON(c.Request.Context(), http.MethodPost, "/auth/register", "", payload)
	observeUpstream("register", start, err)
	if err != nil {
		respondUpstreamError(c, "register", err)
		return
	}

	var envelope struct {
		Data backendAuthData `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "unexpected backend response"})
		return
	}

	if envelope.Data.Token != "" {
		profilePic := envelope.Data.User.ProfilePic
		if profilePic == "" {
			profilePic = registerRequest.ProfilePic
		}
		services.IssueSessionCookies(c, models.Session{
			UserID:     envelope.Data.User.ID,
			Username:   envelope.Data.User.Username,
			Token:      envelope.Data.Token,
			ProfilePic: profilePic,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "registration successful",
		"user":    envelope.Data.User,
	})
}

// Logout - сброс сессионных cookie. Токен на бэкенде не отзывается,
// сессия шлюза живет только в cookie.
func Logout(c *gin.Context) {
	services.ClearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}
