package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-analytics/metrics"
	"social-analytics/models"
	"social-analytics/services"
	"social-analytics/storage"
	"social-analytics/utils"
)

const overviewCSV = `Date,Impressions,Likes,New follows,Unfollows
2024-01-01,100,10,5,0
2024-01-02,200,20,3,0
2024-01-03,300,30,-1,0
`

const contentCSV = `Post id,Date,Post text,Impressions,Likes,Reposts,Replies
1001,2024-01-02 10:00,Unpopular opinion: most dashboards are wrong,50,5,1,1
1002,2024-01-03 18:30,Why does nobody talk about this?,80,8,2,0
`

type testEnv struct {
	router http.Handler
	store  *storage.DatasetStore
}

func newTestEnv(t *testing.T, policy services.BatchPolicy) *testEnv {
	t.Helper()

	now := func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) }
	logger := utils.NewNopLogger()
	reg := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	store := storage.NewDatasetStore(storage.NewMemoryStore(), "test_dataset")
	importer := services.NewImporter(logger, recorder, policy, services.DefaultTopPostsLimit).WithClock(now)
	engine := services.NewEngine(logger, recorder, services.DefaultSummaryTopPosts).WithClock(now)

	h := NewHandler(logger, store, importer, engine, Options{DefaultWindow: models.WindowAll})
	return &testEnv{router: NewRouter(h, reg, logger), store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postJSON(t *testing.T, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return e.do(t, http.MethodPost, path, bytes.NewReader(raw), "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	rec := env.do(t, http.MethodGet, "/healthz", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestImport_JSONThenDashboard(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	rec := env.postJSON(t, "/v1/imports", ImportRequest{Files: []models.UploadFile{
		{Name: "overview.csv", Content: overviewCSV},
		{Name: "content.csv", Content: contentCSV},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[ImportResponse](t, rec)
	assert.NotEmpty(t, resp.BatchID)
	assert.Len(t, resp.Imported, 2)
	assert.Empty(t, resp.Failed)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, int64(600), resp.Summary.TotalImpressions)

	rec = env.do(t, http.MethodGet, "/v1/dashboard?window=all", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[models.DashboardView](t, rec)
	assert.Equal(t, models.WindowAll, view.Window)
	assert.Equal(t, int64(600), view.Summary.TotalImpressions)
	assert.Len(t, view.TopPosts, 2)
	assert.Len(t, view.Series, 3)
}

func TestImport_IsIncremental(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	rec := env.postJSON(t, "/v1/imports", ImportRequest{Files: []models.UploadFile{{Name: "overview.csv", Content: overviewCSV}}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.postJSON(t, "/v1/imports", ImportRequest{Files: []models.UploadFile{{Name: "content.csv", Content: contentCSV}}})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ImportResponse](t, rec)
	assert.Equal(t, []string{"overview.csv", "content.csv"}, resp.Files)
	assert.Equal(t, 2, resp.Summary.TotalPosts)
}

func TestImport_PartialFailureReportsFile(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	rec := env.postJSON(t, "/v1/imports", ImportRequest{Files: []models.UploadFile{
		{Name: "overview.csv", Content: overviewCSV},
		{Name: "notes.csv", Content: "foo,bar\n1,2\n"},
	}})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ImportResponse](t, rec)
	assert.Len(t, resp.Imported, 1)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "notes.csv", resp.Failed[0].File)
	assert.Equal(t, "unrecognized_schema", resp.Failed[0].Reason)
}

func TestImport_AllFailedIsUnprocessable(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	rec := env.postJSON(t, "/v1/imports", ImportRequest{Files: []models.UploadFile{
		{Name: "empty.csv", Content: ""},
	}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decode[ImportResponse](t, rec)
	assert.Equal(t, services.ErrNothingImported.Error(), resp.Error)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "empty_input", resp.Failed[0].Reason)

	rec = env.do(t, http.MethodGet, "/v1/dataset", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImport_AtomicKeepsExistingData(t *testing.T) {
	env := newTestEnv(t, services.PolicyAtomic)

	rec := env.postJSON(t, "/v1/imports", ImportRequest{Files: []models.UploadFile{{Name: "overview.csv", Content: overviewCSV}}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.postJSON(t, "/v1/imports", ImportRequest{Files: []models.UploadFile{
		{Name: "content.csv", Content: contentCSV},
		{Name: "notes.csv", Content: "foo,bar\n1,2\n"},
	}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/dataset", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	ds := decode[models.MergedDataset](t, rec)
	assert.Equal(t, []string{"overview.csv"}, ds.Files)
	assert.Nil(t, ds.Content)
}

func TestImport_BadRequests(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"files":`},
		{name: "no files", body: `{"files":[]}`},
		{name: "missing name", body: `{"files":[{"content":"a,b\n1,2"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/v1/imports", strings.NewReader(tt.body), "application/json")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestUpload_Multipart(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range map[string]string{"overview.csv": overviewCSV, "content.csv": contentCSV} {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	rec := env.do(t, http.MethodPost, "/v1/imports/upload", &body, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[ImportResponse](t, rec)
	assert.Len(t, resp.Imported, 2)
	assert.Equal(t, int64(600), resp.Summary.TotalImpressions)
}

func TestUpload_NoFiles(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "nothing here"))
	require.NoError(t, mw.Close())

	rec := env.do(t, http.MethodPost, "/v1/imports/upload", &body, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPosts_BuildsDatasetFromAPI(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	rec := env.postJSON(t, "/v1/posts", PostsRequest{
		Posts: []models.APIPost{
			{ID: "1", Text: "Hot take: tests are docs", CreatedAt: "2024-01-09T10:00:00Z",
				PublicMetrics: models.APIPublicMetrics{ImpressionCount: 100, LikeCount: 10}},
			{ID: "2", Text: "replying", CreatedAt: "2024-01-10T08:00:00Z",
				PublicMetrics:    models.APIPublicMetrics{ImpressionCount: 40},
				ReferencedTweets: []models.APIReferencedTweet{{Type: "replied_to", ID: "9"}}},
		},
		Profile: models.APIProfile{Username: "alice", Followers: 321},
		Days:    7,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[ImportResponse](t, rec)
	assert.Equal(t, []string{"api:alice"}, resp.Files)
	assert.Equal(t, int64(321), resp.Summary.CurrentFollowers)
	assert.Equal(t, int64(140), resp.Summary.TotalImpressions)

	rec = env.do(t, http.MethodGet, "/v1/dashboard?window=7d", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[models.DashboardView](t, rec)
	assert.Len(t, view.Series, 7)
}

func TestPosts_RejectsInvalidDays(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	rec := env.postJSON(t, "/v1/posts", map[string]any{"posts": []any{}, "days": 1000})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard_InvalidWindow(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	rec := env.do(t, http.MethodGet, "/v1/dashboard?window=14d", nil, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "invalid time window")
}

func TestDashboard_EmptyDataset(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	rec := env.do(t, http.MethodGet, "/v1/dashboard", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[models.DashboardView](t, rec)
	assert.Equal(t, models.WindowAll, view.Window)
	assert.Empty(t, view.TopPosts)
}

func TestDataset_ClearRemovesData(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	rec := env.postJSON(t, "/v1/imports", ImportRequest{Files: []models.UploadFile{{Name: "overview.csv", Content: overviewCSV}}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/v1/dataset", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/dataset", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/v1/dataset", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	rec := env.postJSON(t, "/v1/imports", ImportRequest{Files: []models.UploadFile{{Name: "overview.csv", Content: overviewCSV}}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "social_analytics_import_files_total")
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, services.PolicyBestEffort)

	rec := env.do(t, http.MethodGet, "/v2/nothing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/v1/dataset", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
