package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialgw/api/middleware"
	"socialgw/config"
	"socialgw/services"

	"github.com/gin-gonic/gin"
)

// fakeBackend - заглушка удаленного бэкенда; считает входящие запросы
type fakeBackend struct {
	server *httptest.Server
	calls  int
	handle http.HandlerFunc
}

func newFakeBackend(handle http.HandlerFunc) *fakeBackend {
	fb := &fakeBackend{handle: handle}
	fb.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.calls++
		fb.handle(w, r)
	}))
	return fb
}

func (fb *fakeBackend) Close() { fb.server.Close() }

func setupRouter(t *testing.T, backendURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AppConfig = &config.ConfigSchema{}
	config.AppConfig.Server.Env = "development"

	SetUpstreamClient(services.NewUpstreamClient(backendURL, 2*time.Second))

	r := gin.New()
	r.POST("/api/auth", Login)
	r.POST("/api/register", Register)

	authed := r.Group("", middleware.SessionMiddleware())
	authed.POST("/api/auth/logout", Logout)
	authed.GET("/api/auth/postFeed", GetFeed)
	authed.GET("/api/auth/postFeed/cached", GetCachedFeed)
	authed.POST("/api/posts", CreatePost)
	authed.POST("/api/users/follow", FollowUser)
	authed.POST("/api/users/unfollow", UnfollowUser)
	authed.POST("/api/users/follower", GetFollowers)
	authed.POST("/api/users/following", GetFollowing)
	authed.POST("/api/users/suggestions", GetSuggestions)
	authed.POST("/api/profile/followersCount", GetFollowersCount)
	return r
}

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: services.CookieAuthToken, Value: "test-token"})
	req.AddCookie(&http.Cookie{Name: services.CookieUserID, Value: "user-1"})
	req.AddCookie(&http.Cookie{Name: services.CookieUsername, Value: "tester"})
	return req
}
