package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/domain"
	"github.com/trancuong31/EnviroMonitor/internal/repository"
	"github.com/trancuong31/EnviroMonitor/internal/service"
)

type fakeReadingsRepo struct {
	readings   []domain.Reading
	err        error
	lastPrefix string
	lastCode   string
	lastStart  time.Time
	lastEnd    time.Time
}

func (f *fakeReadingsRepo) GetLatestReadings(ctx context.Context, prefix string) ([]domain.Reading, error) {
	f.lastPrefix = prefix
	return f.readings, f.err
}

func (f *fakeReadingsRepo) GetReadingsInRange(ctx context.Context, code string, start, end time.Time) ([]domain.Reading, error) {
	f.lastCode = code
	f.lastStart = start
	f.lastEnd = end
	return f.readings, f.err
}

func (f *fakeReadingsRepo) InsertReading(ctx context.Context, r *domain.Reading) error {
	return nil
}

func newDataLogServer(repo *fakeReadingsRepo) *Router {
	logger := zap.NewNop()
	svc := service.NewDataLogService(repo, nil, 0, logger)
	router := NewRouter(logger)
	router.RegisterDataLogRoutes(NewDataLogHandler(svc, logger))
	return router
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) Result {
	t.Helper()
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func testReading() domain.Reading {
	name := "F1A Warehouse"
	now := time.Date(2026, 5, 12, 9, 30, 0, 0, time.UTC)
	temp, hum := 24.5, 55.0
	return domain.Reading{
		ID:           1,
		LocationCode: "F1A-TH-001",
		LocationName: &name,
		LogDate:      &now,
		Temperature:  &temp,
		Humidity:     &hum,
	}
}

func TestGetLogs_ReturnsEnvelope(t *testing.T) {
	repo := &fakeReadingsRepo{readings: []domain.Reading{testReading()}}
	router := newDataLogServer(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dataLogs/getLogs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	res := decodeResult(t, rec)
	assert.Equal(t, "success", res.Status)

	data, ok := res.Data.(map[string]any)
	require.True(t, ok)
	logs, ok := data["logs"].([]any)
	require.True(t, ok)
	require.Len(t, logs, 1)

	entry := logs[0].(map[string]any)
	assert.Equal(t, "F1A-TH-001", entry["logidx"])
	assert.Equal(t, "F1A Warehouse", entry["tc_name"])
	assert.Equal(t, 24.5, entry["value_0"])
	assert.Equal(t, 55.0, entry["value_1"])
}

func TestGetLogs_PassesFactoryPrefix(t *testing.T) {
	repo := &fakeReadingsRepo{readings: []domain.Reading{}}
	router := newDataLogServer(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dataLogs/getLogs?factory=F1A", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "F1A", repo.lastPrefix)
}

func TestGetLogs_StorageErrorReturns500(t *testing.T) {
	repo := &fakeReadingsRepo{err: repository.ErrStorageUnavailable}
	router := newDataLogServer(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dataLogs/getLogs", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	res := decodeResult(t, rec)
	assert.Equal(t, "error", res.Status)
	assert.NotEmpty(t, res.Message)
}

func TestGetLogs_RejectsPost(t *testing.T) {
	router := newDataLogServer(&fakeReadingsRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dataLogs/getLogs", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetLogsByDateRange_Success(t *testing.T) {
	repo := &fakeReadingsRepo{readings: []domain.Reading{testReading()}}
	router := newDataLogServer(repo)

	url := "/dataLogs/getLogsByDateRange?logidx=F1A-TH-001&startDate=2026-05-01&endDate=2026-05-31"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "F1A-TH-001", repo.lastCode)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), repo.lastStart)
	assert.Equal(t, time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), repo.lastEnd)
}

func TestGetLogsByDateRange_AcceptsRFC3339(t *testing.T) {
	repo := &fakeReadingsRepo{readings: []domain.Reading{}}
	router := newDataLogServer(repo)

	url := "/dataLogs/getLogsByDateRange?logidx=F1A-TH-001" +
		"&startDate=2026-05-01T08%3A00%3A00Z&endDate=2026-05-01T18%3A00%3A00Z"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, repo.lastStart.Hour())
	assert.Equal(t, 18, repo.lastEnd.Hour())
}

func TestGetLogsByDateRange_MissingLogidx(t *testing.T) {
	router := newDataLogServer(&fakeReadingsRepo{})

	url := "/dataLogs/getLogsByDateRange?startDate=2026-05-01&endDate=2026-05-31"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	res := decodeResult(t, rec)
	assert.Equal(t, "error", res.Status)
	assert.Contains(t, res.Message, "logidx")
}

func TestGetLogsByDateRange_InvalidDates(t *testing.T) {
	router := newDataLogServer(&fakeReadingsRepo{})

	cases := []struct {
		name string
		url  string
	}{
		{"bad start", "/dataLogs/getLogsByDateRange?logidx=X&startDate=not-a-date&endDate=2026-05-31"},
		{"bad end", "/dataLogs/getLogsByDateRange?logidx=X&startDate=2026-05-01&endDate=31-05-2026"},
		{"missing start", "/dataLogs/getLogsByDateRange?logidx=X&endDate=2026-05-31"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.url, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetLogsByDateRange_StorageError(t *testing.T) {
	repo := &fakeReadingsRepo{err: repository.ErrStorageUnavailable}
	router := newDataLogServer(repo)

	url := "/dataLogs/getLogsByDateRange?logidx=F1A-TH-001&startDate=2026-05-01&endDate=2026-05-31"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	res := decodeResult(t, rec)
	assert.Equal(t, "error", res.Status)
}
