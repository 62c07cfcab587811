package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangpeiwen/clipsync/internal/domain"
	"github.com/tangpeiwen/clipsync/internal/usecase"
)

type fakeProcessor struct {
	result       usecase.Result
	lastContent  string
	lastDatabase string
	calls        int
}

func (f *fakeProcessor) Process(ctx context.Context, content, databaseID string) usecase.Result {
	f.calls++
	f.lastContent = content
	f.lastDatabase = databaseID
	return f.result
}

type memoryHistory struct {
	publications []domain.Publication
	err          error
	lastLimit    int
}

func (m *memoryHistory) Record(ctx context.Context, pub domain.Publication) error {
	m.publications = append(m.publications, pub)
	return nil
}

func (m *memoryHistory) Recent(ctx context.Context, limit int) ([]domain.Publication, error) {
	m.lastLimit = limit
	return m.publications, m.err
}

func newTestServer(deps ServerDeps) *Server {
	if deps.Addr == "" {
		deps.Addr = ":0"
	}
	return NewServer(deps)
}

func doRequest(t *testing.T, server *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func TestHandleProcess(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{result: usecase.Result{
		Success: true,
		Message: "成功处理内容并同步到Notion",
		Data:    map[string]any{"notion_page_id": "page-1"},
	}}
	server := newTestServer(ServerDeps{Processor: processor})

	resp := doRequest(t, server, http.MethodPost, "/process",
		`{"content": "看看这个链接", "database_id": "db-7"}`)

	require.Equal(t, http.StatusOK, resp.Code)
	var body processResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "成功处理内容并同步到Notion", body.Message)

	assert.Equal(t, "看看这个链接", processor.lastContent)
	assert.Equal(t, "db-7", processor.lastDatabase)
}

func TestHandleProcessDefaultDatabase(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{result: usecase.Result{Success: true}}
	server := newTestServer(ServerDeps{Processor: processor, DefaultDatabase: "default-db"})

	resp := doRequest(t, server, http.MethodPost, "/process", `{"content": "文本"}`)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "default-db", processor.lastDatabase)
}

func TestHandleProcessMissingDatabase(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{}
	server := newTestServer(ServerDeps{Processor: processor})

	resp := doRequest(t, server, http.MethodPost, "/process", `{"content": "文本"}`)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "缺少database_id")
	assert.Equal(t, 0, processor.calls)
}

func TestHandleProcessMissingContent(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{}
	server := newTestServer(ServerDeps{Processor: processor, DefaultDatabase: "db"})

	resp := doRequest(t, server, http.MethodPost, "/process", `{"database_id": "db-7"}`)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, 0, processor.calls)
}

func TestHandleProcessPipelineFailureStaysOK(t *testing.T) {
	t.Parallel()

	// pipeline failures are payload-level, not transport-level
	processor := &fakeProcessor{result: usecase.Result{
		Success: false,
		Message: "无法提取内容，可能是不支持的平台或链接无效",
	}}
	server := newTestServer(ServerDeps{Processor: processor, DefaultDatabase: "db"})

	resp := doRequest(t, server, http.MethodPost, "/process", `{"content": "https://example.org"}`)

	require.Equal(t, http.StatusOK, resp.Code)
	var body processResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.False(t, body.Success)
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	server := newTestServer(ServerDeps{
		Processor: &fakeProcessor{},
		Checks: map[string]HealthChecker{
			"notion": func() CheckResult { return CheckResult{Status: "healthy"} },
		},
	})

	resp := doRequest(t, server, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, resp.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "clipsync", body.Service)
	assert.Contains(t, body.Checks, "notion")
}

func TestHandleHealthDegraded(t *testing.T) {
	t.Parallel()

	server := newTestServer(ServerDeps{
		Processor: &fakeProcessor{},
		Checks: map[string]HealthChecker{
			"notion":   func() CheckResult { return CheckResult{Status: "healthy"} },
			"database": func() CheckResult { return CheckResult{Status: "degraded", Message: "connection refused"} },
		},
	})

	resp := doRequest(t, server, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, resp.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
}

func TestHandleHealthUnhealthy(t *testing.T) {
	t.Parallel()

	server := newTestServer(ServerDeps{
		Processor: &fakeProcessor{},
		Checks: map[string]HealthChecker{
			"notion": func() CheckResult { return CheckResult{Status: "unhealthy", Message: "missing api key"} },
		},
	})

	resp := doRequest(t, server, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestHandlePublications(t *testing.T) {
	t.Parallel()

	history := &memoryHistory{publications: []domain.Publication{
		{ID: "p1", Title: "第一篇", PageID: "page-1", CreatedAt: time.Now().UTC()},
	}}
	server := newTestServer(ServerDeps{Processor: &fakeProcessor{}, History: history})

	resp := doRequest(t, server, http.MethodGet, "/publications?limit=5", "")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 5, history.lastLimit)
	assert.Contains(t, resp.Body.String(), "第一篇")
}

func TestHandlePublicationsWithoutHistory(t *testing.T) {
	t.Parallel()

	server := newTestServer(ServerDeps{Processor: &fakeProcessor{}})
	resp := doRequest(t, server, http.MethodGet, "/publications", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHandlePublicationsListError(t *testing.T) {
	t.Parallel()

	history := &memoryHistory{err: fmt.Errorf("relation does not exist")}
	server := newTestServer(ServerDeps{Processor: &fakeProcessor{}, History: history})

	resp := doRequest(t, server, http.MethodGet, "/publications", "")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	server := newTestServer(ServerDeps{Processor: &fakeProcessor{}})

	resp := doRequest(t, server, http.MethodGet, "/health", "")
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	assert.Equal(t, "fixed-id", recorder.Header().Get("X-Request-ID"))
}
