package models

import "time"

// Author - автор поста в нормализованном виде
type Author struct {
	ID         string `json:"id,omitempty"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
}

// Reaction - реакция на пост
type Reaction struct {
	ID   string `json:"id"`
	Kind string `json:"tipoReaccion"`
	User Author `json:"user"`
}

// Comment - комментарий к посту
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	User      Author    `json:"user"`
}

// Post - пост ленты после нормализации ответа бэкенда.
// После создания пост со стороны клиента неизменяем, идентичность по ID.
type Post struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Images    []string   `json:"images"`
	CreatedAt time.Time  `json:"createdAt"`
	Author    Author     `json:"author"`
	Hashtags  []string   `json:"hashtags"`
	Reactions []Reaction `json:"reactions"`
	Comments  []Comment  `json:"comments"`
}

// FeedResponse - ответ API для ленты
type FeedResponse struct {
	Message string `json:"message"`
	Posts   []Post `json:"posts"`
}
