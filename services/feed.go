package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"socialgw/models"

	"github.com/go-redis/redis/v8"
)

const (
	FEED_CACHE_TTL  = 24 * time.Hour
	FEED_KEY_PREFIX = "user_feed:"
)

type FeedService struct {
	upstream *UpstreamClient
}

func NewFeedService(upstream *UpstreamClient) *FeedService {
	return &FeedService{upstream: upstream}
}

// rawPost - пост в том виде, в котором его отдает бэкенд. Поля автора и
// картинок приходят в нескольких исторических вариантах, отсюда RawMessage.
type rawPost struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"createdAt"`
	Author    json.RawMessage   `json:"author"`
	Autor     json.RawMessage   `json:"autor"`
	Images    []string          `json:"images"`
	Imagenes  []string          `json:"imagenes"`
	Image     string            `json:"image"`
	Hashtags  []string          `json:"hashtags"`
	Reactions []models.Reaction `json:"reacciones"`
	Comments  []models.Comment  `json:"comentarios"`
}

// Fetch забирает все посты, нормализует и сортирует по createdAt убыванию.
// Серверный порядок не гарантирован, сортировка всегда на шлюзе. Результат
// целиком заменяет предыдущее состояние - инкрементального слияния нет.
func (fsvc *FeedService) Fetch(ctx context.Context, token, userID string) ([]models.Post, error) {
	raw, _, err := fsvc.upstream.DoJSON(ctx, http.MethodGet, "/posts/posts", token, nil)
	if err != nil {
		return nil, err
	}

	posts, err := decodeFeed(raw)
	if err != nil {
		return nil, err
	}

	SortFeed(posts)

	if userID != "" {
		go fsvc.cacheFeed(context.Background(), userID, posts)
	}

	return posts, nil
}

func decodeFeed(raw []byte) ([]models.Post, error) {
	var rawPosts []rawPost
	if err := json.Unmarshal(raw, &rawPosts); err != nil {
		// Часть вариантов бэкенда оборачивает массив в {data: [...]}
		var envelope struct {
			Data []rawPost `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode feed: %w", err)
		}
		rawPosts = envelope.Data
	}

	posts := make([]models.Post, 0, len(rawPosts))
	for _, rp := range rawPosts {
		post, ok := normalizePost(rp)
		if !ok {
			// Битый пост пропускаем, остальная лента загружается
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// normalizePost приводит разнородные поля автора и картинок к одной форме
func normalizePost(rp rawPost) (models.Post, bool) {
	if rp.ID == "" {
		return models.Post{}, false
	}

	post := models.Post{
		ID:        rp.ID,
		Content:   rp.Content,
		CreatedAt: rp.CreatedAt,
		Hashtags:  rp.Hashtags,
		Reactions: rp.Reactions,
		Comments:  rp.Comments,
	}

	post.Author = decodeAuthor(rp.Author)
	if post.Author.Username == "" {
		post.Author = decodeAuthor(rp.Autor)
	}
	post.Author.ProfilePic = ResolveAvatar(post.Author.Username, post.Author.ProfilePic)

	switch {
	case len(rp.Images) > 0:
		post.Images = rp.Images
	case len(rp.Imagenes) > 0:
		post.Images = rp.Imagenes
	case rp.Image != "":
		post.Images = []string{rp.Image}
	default:
		post.Images = []string{}
	}

	return post, true
}

// decodeAuthor принимает и объект {username, profilePic}, и голую строку
func decodeAuthor(raw json.RawMessage) models.Author {
	if len(raw) == 0 {
		return models.Author{}
	}
	var author models.Author
	if err := json.Unmarshal(raw, &author); err == nil && author.Username != "" {
		return author
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return models.Author{Username: name}
	}
	return models.Author{}
}

// SortFeed упорядочивает посты по createdAt убыванию, при равенстве - по ID,
// чтобы повторные загрузки давали одинаковый порядок
func SortFeed(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// cacheFeed заменяет снапшот ленты пользователя в Redis целиком
func (fsvc *FeedService) cacheFeed(ctx context.Context, userID string, posts []models.Post) {
	if RedisClient == nil || len(posts) == 0 {
		return
	}

	feedKey := FEED_KEY_PREFIX + userID
	pipe := RedisClient.Pipeline()
	pipe.Del(ctx, feedKey)
	for _, post := range posts {
		data, err := json.Marshal(post)
		if err != nil {
			continue
		}
		pipe.ZAdd(ctx, feedKey, &redis.Z{
			Score:  float64(post.CreatedAt.UnixNano()),
			Member: string(data),
		})
	}
	pipe.Expire(ctx, feedKey, FEED_CACHE_TTL)
	pipe.Exec(ctx)
}

// Cached возвращает последний успешный снапшот ленты. Вызывается только
// явно: при ошибке бэкенда клиент видит ошибку и кнопку повтора, а не
// молча устаревшие данные.
func (fsvc *FeedService) Cached(ctx context.Context, userID string) ([]models.Post, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis not available")
	}

	members, err := RedisClient.ZRevRange(ctx, FEED_KEY_PREFIX+userID, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(members))
	for _, m := range members {
		var post models.Post
		if err := json.Unmarshal([]byte(m), &post); err == nil {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

// InvalidateFeed сбрасывает снапшот (после создания поста)
func (fsvc *FeedService) InvalidateFeed(ctx context.Context, userID string) {
	if RedisClient == nil || userID == "" {
		return
	}
	RedisClient.Del(ctx, FEED_KEY_PREFIX+userID)
}
