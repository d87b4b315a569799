package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"socialgw/models"
)

const (
	COUNTS_CACHE_TTL  = 5 * time.Minute
	COUNTS_KEY_PREFIX = "follow_counts:"
)

// Ошибки валидации ребра: запрос отклоняется локально, без похода в бэкенд
var (
	ErrSelfFollow    = fmt.Errorf("cannot follow yourself")
	ErrMissingUserID = fmt.Errorf("missing user id")
)

type FollowService struct {
	upstream *UpstreamClient
}

func NewFollowService(upstream *UpstreamClient) *FollowService {
	return &FollowService{upstream: upstream}
}

// Follow создает ребро actorID -> targetID.
// При успехе кеш счетчиков инвалидируется: следующее чтение идет в бэкенд.
func (fs *FollowService) Follow(ctx context.Context, token, actorID, targetID string) error {
	if err := validateEdge(actorID, targetID); err != nil {
		return err
	}

	body := map[string]string{"userToFollowId": targetID}
	_, _, err := fs.upstream.DoJSON(ctx, http.MethodPost, "/followers/follow/"+url.PathEscape(actorID), token, body)
	if err != nil {
		return err
	}

	fs.invalidateCounts(ctx, actorID, targetID)
	return nil
}

// Unfollow удаляет ребро actorID -> targetID
func (fs *FollowService) Unfollow(ctx context.Context, token, actorID, targetID string) error {
	if err := validateEdge(actorID, targetID); err != nil {
		return err
	}

	body := map[string]string{"userToUnfollowId": targetID}
	_, _, err := fs.upstream.DoJSON(ctx, http.MethodPost, "/followers/unfollow/"+url.PathEscape(actorID), token, body)
	if err != nil {
		return err
	}

	fs.invalidateCounts(ctx, actorID, targetID)
	return nil
}

func validateEdge(actorID, targetID string) error {
	if actorID == "" || targetID == "" {
		return ErrMissingUserID
	}
	if actorID == targetID {
		return ErrSelfFollow
	}
	return nil
}

// Followers возвращает подписчиков пользователя. Пустой список - валидное
// состояние, а не ошибка.
func (fs *FollowService) Followers(ctx context.Context, token, userID string) ([]models.UserSummary, error) {
	return fs.fetchUserList(ctx, token, "/followers/getFollowers/"+url.PathEscape(userID), "followers")
}

// Following возвращает подписки пользователя
func (fs *FollowService) Following(ctx context.Context, token, userID string) ([]models.UserSummary, error) {
	return fs.fetchUserList(ctx, token, "/followers/getFollowing/"+url.PathEscape(userID), "following")
}

// Suggestions возвращает рекомендации бэкенда без фильтрации.
// Пересечение с подписками убирает FilterSuggestions на стороне шлюза.
func (fs *FollowService) Suggestions(ctx context.Context, token, userID string) ([]models.UserSummary, error) {
	return fs.fetchUserList(ctx, token, "/followers/getSuggestions/"+url.PathEscape(userID), "suggestions")
}

func (fs *FollowService) fetchUserList(ctx context.Context, token, path, key string) ([]models.UserSummary, error) {
	raw, _, err := fs.upstream.DoJSON(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}

	// Бэкенд отвечает то голым массивом, то {<key>: [...]}
	var users []models.UserSummary
	if err := json.Unmarshal(raw, &users); err == nil {
		return normalizeUsers(users), nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// Неожиданная форма ответа: отдаем пустой список вместо падения
		return []models.UserSummary{}, nil
	}
	if list, ok := envelope[key]; ok {
		if err := json.Unmarshal(list, &users); err == nil {
			return normalizeUsers(users), nil
		}
	}
	return []models.UserSummary{}, nil
}

func normalizeUsers(users []models.UserSummary) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		u.Avatar = ResolveAvatar(u.Name, u.Avatar)
		out = append(out, u)
	}
	return out
}

// Counts читает счетчики подписок через Redis-кеш
func (fs *FollowService) Counts(ctx context.Context, token, userID string) (models.FollowCounts, error) {
	if userID == "" {
		return models.FollowCounts{}, ErrMissingUserID
	}

	cacheKey := COUNTS_KEY_PREFIX + userID
	if RedisClient != nil {
		if cached, err := RedisClient.Get(ctx, cacheKey).Result(); err == nil {
			var counts models.FollowCounts
			if err := json.Unmarshal([]byte(cached), &counts); err == nil {
				return counts, nil
			}
		}
	}

	raw, _, err := fs.upstream.DoJSON(ctx, http.MethodGet, "/followers/counts/"+url.PathEscape(userID), token, nil)
	if err != nil {
		return models.FollowCounts{}, err
	}

	var counts models.FollowCounts
	if err := json.Unmarshal(raw, &counts); err != nil {
		return models.FollowCounts{}, fmt.Errorf("failed to decode counts: %w", err)
	}

	if RedisClient != nil {
		if data, err := json.Marshal(counts); err == nil {
			RedisClient.Set(ctx, cacheKey, data, COUNTS_CACHE_TTL)
		}
	}

	return counts, nil
}

func (fs *FollowService) invalidateCounts(ctx context.Context, userIDs ...string) {
	if RedisClient == nil {
		return
	}
	for _, id := range userIDs {
		RedisClient.Del(ctx, COUNTS_KEY_PREFIX+id)
	}
}

// FilterSuggestions убирает из рекомендаций тех, на кого уже есть подписка.
// Join выполняется на шлюзе: бэкенд отдает оба списка независимо.
func FilterSuggestions(suggestions, following []models.UserSummary) []models.UserSummary {
	followed := make(map[string]struct{}, len(following))
	for _, u := range following {
		followed[u.ID] = struct{}{}
	}
	filtered := make([]models.UserSummary, 0, len(suggestions))
	for _, s := range suggestions {
		if _, ok := followed[s.ID]; ok {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}

// ResolveAvatar разрешает аватар по единому правилу: пустое значение или
// сентинел "default.jpg" дают сгенерированную заглушку по имени, абсолютный
// URL остается как есть, остальное трактуется как путь от корня.
func ResolveAvatar(name, avatar string) string {
	if avatar == "" || avatar == "default.jpg" {
		if name == "" {
			name = "U"
		}
		return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
	}
	if strings.HasPrefix(avatar, "http://") || strings.HasPrefix(avatar, "https://") {
		return avatar
	}
	return "/" + strings.TrimPrefix(avatar, "/")
}
