package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialgw/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withMiniRedis подменяет глобальный клиент на встроенный Redis на время теста
func withMiniRedis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = RedisClient.Close()
		RedisClient = nil
	})
}

func feedBackend(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/posts", r.URL.Path)
		_, _ = w.Write([]byte(payload))
	}))
}

func TestFetchSortsByCreatedAtDesc(t *testing.T) {
	payload := `[
		{"id":"p1","content":"oldest","createdAt":"2025-01-01T10:00:00Z","author":{"username":"ben"}},
		{"id":"p3","content":"newest","createdAt":"2025-03-01T10:00:00Z","author":{"username":"gwen"}},
		{"id":"p2","content":"middle","createdAt":"2025-02-01T10:00:00Z","author":{"username":"max"}}
	]`
	backend := feedBackend(t, payload)
	defer backend.Close()

	fsvc := NewFeedService(NewUpstreamClient(backend.URL, time.Second))
	posts, err := fsvc.Fetch(context.Background(), "tok", "")
	require.NoError(t, err)

	require.Len(t, posts, 3)
	assert.Equal(t, "p3", posts[0].ID)
	assert.Equal(t, "p2", posts[1].ID)
	assert.Equal(t, "p1", posts[2].ID)
}

func TestFetchIdempotent(t *testing.T) {
	payload := `[
		{"id":"b","content":"x","createdAt":"2025-01-01T10:00:00Z","author":{"username":"u"}},
		{"id":"a","content":"y","createdAt":"2025-01-01T10:00:00Z","author":{"username":"u"}}
	]`
	backend := feedBackend(t, payload)
	defer backend.Close()

	fsvc := NewFeedService(NewUpstreamClient(backend.URL, time.Second))

	first, err := fsvc.Fetch(context.Background(), "tok", "")
	require.NoError(t, err)
	second, err := fsvc.Fetch(context.Background(), "tok", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Одинаковый createdAt упорядочен по ID, порядок стабилен
	assert.Equal(t, "b", first[0].ID)
}

func TestFetchNormalizesLegacyFields(t *testing.T) {
	payload := `{"data":[
		{"id":"p1","content":"es","createdAt":"2025-01-01T10:00:00Z","autor":{"username":"tennyson","profilePic":"default.jpg"},"imagenes":["a.png","b.png"]},
		{"id":"p2","content":"str-author","createdAt":"2025-01-02T10:00:00Z","author":"plain-name","image":"c.png"}
	]}`
	backend := feedBackend(t, payload)
	defer backend.Close()

	fsvc := NewFeedService(NewUpstreamClient(backend.URL, time.Second))
	posts, err := fsvc.Fetch(context.Background(), "tok", "")
	require.NoError(t, err)
	require.Len(t, posts, 2)

	legacy := posts[1]
	assert.Equal(t, "tennyson", legacy.Author.Username)
	assert.Contains(t, legacy.Author.ProfilePic, "ui-avatars.com")
	assert.Equal(t, []string{"a.png", "b.png"}, legacy.Images)

	stringAuthor := posts[0]
	assert.Equal(t, "plain-name", stringAuthor.Author.Username)
	assert.Equal(t, []string{"c.png"}, stringAuthor.Images)
}

func TestFetchSkipsBrokenPosts(t *testing.T) {
	// Пост без id выбрасывается, остальная лента загружается
	payload := `[
		{"id":"","content":"broken","createdAt":"2025-01-01T10:00:00Z"},
		{"id":"ok","content":"fine","createdAt":"2025-01-02T10:00:00Z","author":{"username":"u"}}
	]`
	backend := feedBackend(t, payload)
	defer backend.Close()

	fsvc := NewFeedService(NewUpstreamClient(backend.URL, time.Second))
	posts, err := fsvc.Fetch(context.Background(), "tok", "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "ok", posts[0].ID)
}

func TestFetchEmptyFeed(t *testing.T) {
	backend := feedBackend(t, `[]`)
	defer backend.Close()

	fsvc := NewFeedService(NewUpstreamClient(backend.URL, time.Second))
	posts, err := fsvc.Fetch(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestFetchRelaysUpstreamError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"backend down"}`))
	}))
	defer backend.Close()

	fsvc := NewFeedService(NewUpstreamClient(backend.URL, time.Second))
	_, err := fsvc.Fetch(context.Background(), "tok", "")

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusBadGateway, upstreamErr.Status)
	assert.Equal(t, "backend down", upstreamErr.Message)
}

func TestFeedSnapshotRoundTrip(t *testing.T) {
	withMiniRedis(t)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := []models.Post{
		{ID: "p2", Content: "newer", CreatedAt: ts.Add(time.Hour), Images: []string{}},
		{ID: "p1", Content: "older", CreatedAt: ts, Images: []string{}},
	}

	fsvc := NewFeedService(nil)
	fsvc.cacheFeed(context.Background(), "u1", posts)

	cached, err := fsvc.Cached(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, cached, 2)
	// Снапшот отдается в порядке ленты: createdAt по убыванию
	assert.Equal(t, "p2", cached[0].ID)
	assert.Equal(t, "p1", cached[1].ID)
	assert.Equal(t, posts, cached)
}

func TestFeedSnapshotReplacedWholesale(t *testing.T) {
	withMiniRedis(t)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fsvc := NewFeedService(nil)

	fsvc.cacheFeed(context.Background(), "u1", []models.Post{
		{ID: "stale", CreatedAt: ts, Images: []string{}},
	})
	fsvc.cacheFeed(context.Background(), "u1", []models.Post{
		{ID: "fresh", CreatedAt: ts.Add(time.Hour), Images: []string{}},
	})

	cached, err := fsvc.Cached(context.Background(), "u1")
	require.NoError(t, err)
	// Старый снапшот вытеснен целиком, не слит с новым
	require.Len(t, cached, 1)
	assert.Equal(t, "fresh", cached[0].ID)
}

func TestInvalidateFeedDropsSnapshot(t *testing.T) {
	withMiniRedis(t)

	fsvc := NewFeedService(nil)
	fsvc.cacheFeed(context.Background(), "u1", []models.Post{
		{ID: "p1", CreatedAt: time.Now(), Images: []string{}},
	})

	fsvc.InvalidateFeed(context.Background(), "u1")

	cached, err := fsvc.Cached(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestCachedWithoutRedis(t *testing.T) {
	fsvc := NewFeedService(nil)
	_, err := fsvc.Cached(context.Background(), "u1")
	assert.Error(t, err)
}

func TestSortFeedStable(t *testing.T) {
	ts := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	posts := []models.Post{
		{ID: "a", CreatedAt: ts},
		{ID: "c", CreatedAt: ts.Add(time.Hour)},
		{ID: "b", CreatedAt: ts},
	}
	SortFeed(posts)
	assert.Equal(t, "c", posts[0].ID)
	assert.Equal(t, "b", posts[1].ID)
	assert.Equal(t, "a", posts[2].ID)
}

func TestDecodeFeedRejectsGarbage(t *testing.T) {
	_, err := decodeFeed([]byte(`"not a feed"`))
	assert.Error(t, err)
}

func TestDecodeAuthorVariants(t *testing.T) {
	obj := decodeAuthor(json.RawMessage(`{"username":"ben","profilePic":"x.png"}`))
	assert.Equal(t, "ben", obj.Username)

	str := decodeAuthor(json.RawMessage(`"ben"`))
	assert.Equal(t, "ben", str.Username)

	assert.Empty(t, decodeAuthor(nil).Username)
}
