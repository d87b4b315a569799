package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"socialgw/models"
	"socialgw/services"

	"github.com/gin-gonic/gin"
)

var feedService *services.FeedService

// GetFeed - лента постов. Пустая лента - валидный ответ с пустым списком,
// клиент рендерит явное пустое состояние.
func GetFeed(c *gin.Context) {
	start := time.Now()
	posts, err := feedService.Fetch(c.Request.Context(), sessionToken(c), sessionUserID(c))
	observeUpstream("feed", start, err)
	if err != nil {
		respondUpstreamError(c, "feed", err)
		return
	}

	c.JSON(http.StatusOK, models.FeedResponse{
		Message: "posts fetched successfully",
		Posts:   posts,
	})
}

// GetCachedFeed - последний успешный снапшот ленты из Redis. Вызывается
// клиентом явно (офлайн-просмотр), обычная загрузка всегда идет в бэкенд.
func GetCachedFeed(c *gin.Context) {
	posts, err := feedService.Cached(c.Request.Context(), sessionUserID(c))
	if err != nil || len(posts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "no cached feed available"})
		return
	}

	c.JSON(http.StatusOK, models.FeedResponse{
		Message: "posts fetched from cache",
		Posts:   posts,
	})
}

// CreatePost - создание поста из multipart-формы композера.
// Невалидные картинки отклоняются поименно, валидные из той же пачки
// уходят в бэкенд. При ошибке композер на клиенте состояние не очищает.
func CreatePost(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid multipart form"})
		return
	}

	content := ""
	if values := form.Value["content"]; len(values) > 0 {
		content = values[0]
	}

	var images []services.ImageUpload
	var rejected []gin.H
	for _, fileHeader := range form.File["image"] {
		if err := services.ValidateImage(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size); err != nil {
			rejected = append(rejected, gin.H{"file": fileHeader.Filename, "message": err.Error()})
			continue
		}
		file, err := fileHeader.Open()
		if err != nil {
			rejected = append(rejected, gin.H{"file": fileHeader.Filename, "message": "failed to read file"})
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			rejected = append(rejected, gin.H{"file": fileHeader.Filename, "message": "failed to read file"})
			continue
		}
		images = append(images, services.ImageUpload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	if err := services.ValidateDraft(content, images); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "rejected": rejected})
		return
	}

	body, contentType, err := services.EncodeMultipart(content, images)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to encode post"})
		return
	}

	start := time.Now()
	raw, _, err := upstreamClient.DoMultipart(c.Request.Context(), "/posts/posts", sessionToken(c), contentType, body)
	observeUpstream("create_post", start, err)
	if err != nil {
		respondUpstreamError(c, "create_post", err)
		return
	}

	// Снапшот ленты устарел - следующий Fetch перечитает бэкенд
	feedService.InvalidateFeed(c.Request.Context(), sessionUserID(c))

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(raw, &envelope)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "post created successfully",
		"data":     envelope.Data,
		"rejected": rejected,
	})
}
