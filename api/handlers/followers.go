package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"socialgw/services"

	"github.com/gin-gonic/gin"
)

var followService *services.FollowService

type followRequest struct {
	UserID       string `json:"IdUser"`
	TargetUserID string `json:"targetUserId"`
}

type userIDRequest struct {
	UserID string `json:"userId"`
}

// FollowUser - подписка на пользователя
func FollowUser(c *gin.Context) {
	var r followRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	start := time.Now()
	err := followService.Follow(c.Request.Context(), sessionToken(c), r.UserID, r.TargetUserID)
	observeUpstream("follow", start, err)
	if err != nil {
		if errors.Is(err, services.ErrSelfFollow) || errors.Is(err, services.ErrMissingUserID) {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		respondUpstreamError(c, "follow", err)
		return
	}

	// Push-уведомление подписанному; сбой доставки подписку не откатывает
	session, _ := services.SessionFromRequest(c)
	go services.NotifyFollow(context.Background(), r.TargetUserID, r.UserID, session.Username)

	c.JSON(http.StatusOK, gin.H{"message": "followed successfully"})
}

// UnfollowUser - отписка от пользователя
func UnfollowUser(c *gin.Context) {
	var r followRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	start := time.Now()
	err := followService.Unfollow(c.Request.Context(), sessionToken(c), r.UserID, r.TargetUserID)
	observeUpstream("unfollow", start, err)
	if err != nil {
		if errors.Is(err, services.ErrSelfFollow) || errors.Is(err, services.ErrMissingUserID) {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		respondUpstreamError(c, "unfollow", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unfollowed successfully"})
}

// GetFollowers - список подписчиков
func GetFollowers(c *gin.Context) {
	var r userIDRequest
	if err := c.ShouldBindJSON(&r); err != nil || r.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing userId"})
		return
	}

	start := time.Now()
	followers, err := followService.Followers(c.Request.Context(), sessionToken(c), r.UserID)
	observeUpstream("followers", start, err)
	if err != nil {
		respondUpstreamError(c, "followers", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "followers fetched successfully",
		"followers": followers,
	})
}

// GetFollowing - список подписок
func GetFollowing(c *gin.Context) {
	var r userIDRequest
	if err := c.ShouldBindJSON(&r); err != nil || r.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing userId"})
		return
	}

	start := time.Now()
	following, err := followService.Following(c.Request.Context(), sessionToken(c), r.UserID)
	observeUpstream("following", start, err)
	if err != nil {
		respondUpstreamError(c, "following", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "following fetched successfully",
		"following": following,
	})
}

// GetSuggestions - рекомендации за вычетом уже имеющихся подписок.
// Два независимых запроса к бэкенду, join выполняется здесь.
func GetSuggestions(c *gin.Context) {
	var r userIDRequest
	if err := c.ShouldBindJSON(&r); err != nil || r.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing userId"})
		return
	}

	token := sessionToken(c)
	ctx := c.Request.Context()

	start := time.Now()
	suggestions, err := followService.Suggestions(ctx, token, r.UserID)
	observeUpstream("suggestions", start, err)
	if err != nil {
		respondUpstreamError(c, "suggestions", err)
		return
	}

	following, err := followService.Following(ctx, token, r.UserID)
	if err != nil {
		// Нет списка подписок - отдаем рекомендации без фильтра,
		// клиент дофильтрует после следующей перечитки
		following = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "suggestions fetched successfully",
		"suggestions": services.FilterSuggestions(suggestions, following),
	})
}

// GetFollowersCount - счетчики подписчиков/подписок
func GetFollowersCount(c *gin.Context) {
	var r userIDRequest
	if err := c.ShouldBindJSON(&r); err != nil || r.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing userId"})
		return
	}

	start := time.Now()
	counts, err := followService.Counts(c.Request.Context(), sessionToken(c), r.UserID)
	observeUpstream("counts", start, err)
	if err != nil {
		respondUpstreamError(c, "counts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "counts fetched successfully",
		"counts":  counts,
	})
}
