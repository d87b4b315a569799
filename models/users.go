package models

import "time"

// Session - авторизационное состояние, хранится только в cookie браузера.
// Token за пределы HTTP-only cookie не выходит (кроме development-режима).
type Session struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Token      string    `json:"-"`
	ProfilePic string    `json:"profile_pic"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// UserSummary - элемент списков подписчиков/подписок/рекомендаций
type UserSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Username       string `json:"username"`
	Avatar         string `json:"avatar"`
	FollowersCount int64  `json:"followersCount"`
	IsFollowing    bool   `json:"isFollowing"`
}

// FollowCounts - производные счетчики, кешируются и сверяются с бэкендом
type FollowCounts struct {
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}
