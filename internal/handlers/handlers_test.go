package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almanac/internal/store"
	"almanac/pkg/api/almanac"
	"almanac/pkg/logging"
)

func setupTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.NewLogger()
	Init(store.New(db, log, nil), log, nil, nil, nil, nil)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"))
	return router, mock
}

func performRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func contentItemColumns() []string {
	return []string{"id", "ts", "category", "status", "content_type", "assignee_id"}
}

func snapshotColumns() []string {
	return []string{"id", "snapshot_date", "values_by_category", "total"}
}

func TestGetOverview(t *testing.T) {
	router, mock := setupTestRouter(t)

	monday := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM content_items").WillReturnRows(
		sqlmock.NewRows(contentItemColumns()).
			AddRow("item-1", monday, "instagram", "published", "post", "user-1").
			AddRow("item-2", monday.AddDate(0, 0, 1), "telegram", "published", "post", "").
			AddRow("item-3", monday.AddDate(0, 0, 2), "instagram", "draft", "post", "user-1"))
	mock.ExpectQuery("FROM roster_categories").WillReturnRows(
		sqlmock.NewRows([]string{"name"}).AddRow("instagram").AddRow("telegram"))
	mock.ExpectQuery("FROM roster_members").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow("user-1"))

	w := performRequest(router, "/api/v1/analytics/overview")
	require.Equal(t, http.StatusOK, w.Code)

	var resp almanac.OverviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalItems)
	// the telegram item is published, but excluded from the net count
	assert.Equal(t, 1, resp.NetPublished)
	require.NotEmpty(t, resp.ByCategory)
	assert.Equal(t, "instagram", resp.ByCategory[0].Label)
	assert.Equal(t, 2, resp.ByCategory[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOverview_ExcludeOverride(t *testing.T) {
	router, mock := setupTestRouter(t)

	monday := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM content_items").WillReturnRows(
		sqlmock.NewRows(contentItemColumns()).
			AddRow("item-1", monday, "instagram", "published", "post", "").
			AddRow("item-2", monday, "telegram", "published", "post", ""))
	mock.ExpectQuery("FROM roster_categories").WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectQuery("FROM roster_members").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := performRequest(router, "/api/v1/analytics/overview?exclude=instagram")
	require.Equal(t, http.StatusOK, w.Code)

	var resp almanac.OverviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// with the override in place telegram counts again and instagram does not
	assert.Equal(t, 1, resp.NetPublished)
}

func TestGetOverview_StoreError(t *testing.T) {
	router, mock := setupTestRouter(t)

	mock.ExpectQuery("FROM content_items").WillReturnError(assert.AnError)

	w := performRequest(router, "/api/v1/analytics/overview?preset=year&year=2024")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp almanac.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to build overview", resp.Error)
}

func TestGetDistribution_InvalidDimension(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := performRequest(router, "/api/v1/analytics/distribution?dimension=bogus")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp almanac.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "Invalid dimension")
}

func TestGetDistribution_ByStatus(t *testing.T) {
	router, mock := setupTestRouter(t)

	ts := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM content_items").WillReturnRows(
		sqlmock.NewRows(contentItemColumns()).
			AddRow("item-1", ts, "instagram", "published", "post", "").
			AddRow("item-2", ts, "instagram", "published", "reel", "").
			AddRow("item-3", ts, "tiktok", "draft", "video", ""))

	w := performRequest(router, "/api/v1/analytics/distribution?dimension=status")
	require.Equal(t, http.StatusOK, w.Code)

	var resp almanac.DistributionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "status", resp.Dimension)
	// the closed status set keeps zero-count buckets
	require.Len(t, resp.Buckets, 5)
	assert.Equal(t, "published", resp.Buckets[0].Label)
	assert.Equal(t, 2, resp.Buckets[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDistribution_ByCategorySeedsRosterOrder(t *testing.T) {
	router, mock := setupTestRouter(t)

	ts := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM content_items").WillReturnRows(
		sqlmock.NewRows(contentItemColumns()).
			AddRow("item-1", ts, "tiktok", "published", "video", "").
			AddRow("item-2", ts, "instagram", "published", "post", ""))
	mock.ExpectQuery("FROM roster_categories").WillReturnRows(
		sqlmock.NewRows([]string{"name"}).AddRow("instagram").AddRow("tiktok"))

	w := performRequest(router, "/api/v1/analytics/distribution?dimension=category")
	require.Equal(t, http.StatusOK, w.Code)

	var resp almanac.DistributionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Buckets, 2)
	// equal counts keep the roster's display order
	assert.Equal(t, "instagram", resp.Buckets[0].Label)
	assert.Equal(t, "tiktok", resp.Buckets[1].Label)
}

func TestGetGrowth(t *testing.T) {
	router, mock := setupTestRouter(t)

	mock.ExpectQuery("FROM follower_snapshots").WillReturnRows(
		sqlmock.NewRows(snapshotColumns()).
			AddRow("snap-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), []byte(`{"instagram":100}`), 100).
			AddRow("snap-2", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), []byte(`{"instagram":150,"tiktok":20}`), 170))

	w := performRequest(router, "/api/v1/analytics/growth")
	require.Equal(t, http.StatusOK, w.Code)

	var resp almanac.GrowthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Series, 2)
	assert.Equal(t, 100, resp.Series[0].Total)
	assert.Equal(t, 170, resp.Series[1].Total)
	assert.Equal(t, 70, resp.Growth.Diff)
	assert.InDelta(t, 70.0, resp.Growth.Percent, 0.001)
	assert.False(t, resp.InsufficientData)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGrowth_IncludeOnly(t *testing.T) {
	router, mock := setupTestRouter(t)

	mock.ExpectQuery("FROM follower_snapshots").WillReturnRows(
		sqlmock.NewRows(snapshotColumns()).
			AddRow("snap-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), []byte(`{"instagram":100,"tiktok":40}`), 140).
			AddRow("snap-2", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), []byte(`{"instagram":150,"tiktok":60}`), 210))

	w := performRequest(router, "/api/v1/analytics/growth?include=instagram")
	require.Equal(t, http.StatusOK, w.Code)

	var resp almanac.GrowthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Series, 2)
	assert.Equal(t, 100, resp.Series[0].Total)
	assert.Equal(t, 150, resp.Series[1].Total)
	assert.Equal(t, 50, resp.Growth.Diff)
}

func TestGetGrowth_InsufficientData(t *testing.T) {
	router, mock := setupTestRouter(t)

	mock.ExpectQuery("FROM follower_snapshots").WillReturnRows(
		sqlmock.NewRows(snapshotColumns()).
			AddRow("snap-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), []byte(`{"instagram":100}`), 100))

	w := performRequest(router, "/api/v1/analytics/growth")
	require.Equal(t, http.StatusOK, w.Code)

	var resp almanac.GrowthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.InsufficientData)
	assert.Equal(t, 0, resp.Growth.Diff)
	assert.Equal(t, 0.0, resp.Growth.Percent)
}

func TestGetGrowth_StoreError(t *testing.T) {
	router, mock := setupTestRouter(t)

	mock.ExpectQuery("FROM follower_snapshots").WillReturnError(assert.AnError)

	w := performRequest(router, "/api/v1/analytics/growth")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetStepGrowth(t *testing.T) {
	router, mock := setupTestRouter(t)

	mock.ExpectQuery("FROM follower_snapshots").WillReturnRows(
		sqlmock.NewRows(snapshotColumns()).
			AddRow("snap-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), []byte(`{"instagram":100}`), 100).
			AddRow("snap-2", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), []byte(`{"instagram":130}`), 130).
			AddRow("snap-3", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), []byte(`{"instagram":120}`), 120))

	w := performRequest(router, "/api/v1/analytics/growth/steps")
	require.Equal(t, http.StatusOK, w.Code)

	var resp almanac.StepGrowthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Steps, 2)
	assert.Equal(t, 30, resp.Steps[0].Diff)
	assert.Equal(t, -10, resp.Steps[1].Diff)
}

func TestGetPatterns(t *testing.T) {
	router, mock := setupTestRouter(t)

	saturday := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM content_items").WillReturnRows(
		sqlmock.NewRows(contentItemColumns()).
			AddRow("item-1", saturday, "instagram", "published", "post", "").
			AddRow("item-2", monday, "instagram", "published", "post", "").
			AddRow("item-3", monday, "tiktok", "draft", "video", ""))

	w := performRequest(router, "/api/v1/analytics/patterns")
	require.Equal(t, http.StatusOK, w.Code)

	var resp almanac.PatternsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Patterns.WeekendCount)
	assert.Equal(t, 9, resp.Patterns.FavoriteHour)
	// drafts never contribute to publishing patterns
	assert.Equal(t, 1, resp.Patterns.LongestStreakDays)
}

func TestGetCategories(t *testing.T) {
	router, mock := setupTestRouter(t)

	ts := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM content_items").WillReturnRows(
		sqlmock.NewRows(contentItemColumns()).
			AddRow("item-1", ts, "myspace", "published", "post", "").
			AddRow("item-2", ts, "instagram", "published", "post", ""))
	mock.ExpectQuery("FROM roster_categories").WillReturnRows(
		sqlmock.NewRows([]string{"name"}).AddRow("instagram").AddRow("tiktok"))

	w := performRequest(router, "/api/v1/analytics/categories")
	require.Equal(t, http.StatusOK, w.Code)

	var resp almanac.CategoriesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// roster order first, then retired categories in first-seen order
	assert.Equal(t, []string{"instagram", "tiktok", "myspace"}, resp.Candidates)
	assert.Equal(t, []string{"telegram", "whatsapp"}, resp.DefaultExcluded)
}
