package services

import (
	"errors"
	"net/http"
	"time"

	"socialgw/config"
	"socialgw/models"

	"github.com/gin-gonic/gin"
)

const (
	CookieAuthToken  = "authToken"
	CookieUserID     = "userId"
	CookieUsername   = "username"
	CookieProfilePic = "profilePic"

	// SessionMaxAge - фиксированный TTL сессии, 7 дней
	SessionMaxAge = 7 * 24 * 60 * 60
)

var ErrNoSession = errors.New("no session")

// IssueSessionCookies выставляет cookie после логина/регистрации.
// authToken и userId - только HTTP-only, username и profilePic читаемы клиентом.
func IssueSessionCookies(c *gin.Context, session models.Session) {
	secure := config.IsProduction()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieAuthToken, session.Token, SessionMaxAge, "/", "", secure, true)
	c.SetCookie(CookieUserID, session.UserID, SessionMaxAge, "/", "", secure, true)
	c.SetCookie(CookieUsername, session.Username, SessionMaxAge, "/", "", secure, false)
	c.SetCookie(CookieProfilePic, session.ProfilePic, SessionMaxAge, "/", "", secure, false)
}

// ClearSessionCookies сбрасывает сессию при логауте
func ClearSessionCookies(c *gin.Context) {
	secure := config.IsProduction()
	c.SetSameSite(http.SameSiteStrictMode)
	for _, name := range []string{CookieAuthToken, CookieUserID, CookieUsername, CookieProfilePic} {
		c.SetCookie(name, "", -1, "/", "", secure, true)
	}
}

// SessionFromRequest восстанавливает сессию из cookie запроса.
// Отсутствие токена означает анонимный запрос, а не ошибку сервера.
func SessionFromRequest(c *gin.Context) (models.Session, error) {
	token, err := c.Cookie(CookieAuthToken)
	if err != nil || token == "" {
		return models.Session{}, ErrNoSession
	}
	userID, _ := c.Cookie(CookieUserID)
	username, _ := c.Cookie(CookieUsername)
	profilePic, _ := c.Cookie(CookieProfilePic)
	return models.Session{
		UserID:     userID,
		Username:   username,
		Token:      token,
		ProfilePic: profilePic,
		ExpiresAt:  time.Now().Add(SessionMaxAge * time.Second),
	}, nil
}
