package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/exgrade-go/internal/logging"
	"github.com/ukaji3/exgrade-go/pkg/exgrade"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/grid"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/scoring"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/template"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/transcript"
)

var errStoreDown = errors.New("store down")

type failingStore struct{}

func (failingStore) Append(context.Context, *transcript.Interview) error { return errStoreDown }

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() Config {
	return Config{
		ListenAddress:   "127.0.0.1:0",
		MaxUploadBytes:  1 << 20,
		ShutdownTimeout: time.Second,
		MetricsEnabled:  true,
		Grade:           exgrade.DefaultOptions(),
		Layout:          template.DefaultLayout(),
	}
}

func newTestServer(t *testing.T, store transcript.Store) *Server {
	t.Helper()

	return New(testConfig(), scoring.Stub{}, store, logging.Discard())
}

// completedWorkbook returns the default task filled in correctly, or with a
// wrong first total when broken is set.
func completedWorkbook(t *testing.T, broken bool) []byte {
	t.Helper()

	f, err := template.Build(template.DefaultLayout())
	require.NoError(t, err)
	defer f.Close()

	totals := map[string]float64{"C2": 200, "C3": 49.95, "C4": 250}
	if broken {
		totals["C2"] = 150
	}
	for cell, v := range totals {
		require.NoError(t, f.SetCellValue(template.DefaultSheet, cell, v))
	}
	require.NoError(t, f.SetCellValue(template.DefaultSheet, "G1", 499.95))

	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func multipartBody(t *testing.T, workbook []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if workbook != nil {
		part, err := w.CreateFormFile("workbook", "submission.xlsx")
		require.NoError(t, err)
		_, err = part.Write(workbook)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, transcript.NewFileStore(filepath.Join(t.TempDir(), "t.jsonl")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTemplateDownload(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, transcript.NewFileStore(filepath.Join(t.TempDir(), "t.jsonl")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/template", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))

	g, err := grid.OpenReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 4, g.MaxRow())
}

func TestGrade(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, transcript.NewFileStore(filepath.Join(t.TempDir(), "t.jsonl")))

	body, contentType := multipartBody(t, completedWorkbook(t, true), nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/grade", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, false, report["pass"])
	assert.InDelta(t, 3, report["row_count"], 0)
	mismatches, ok := report["row_mismatches"].([]any)
	require.True(t, ok)
	require.Len(t, mismatches, 1)
	assert.Equal(t, map[string]any{"row": 2.0, "expected": 200.0, "actual": 150.0}, mismatches[0])
}

func TestGrade_BadRequests(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, transcript.NewFileStore(filepath.Join(t.TempDir(), "t.jsonl")))

	body, contentType := multipartBody(t, nil, map[string]string{"q1": "x"})
	req := httptest.NewRequest(http.MethodPost, "/v1/grade", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, contentType = multipartBody(t, []byte("not a workbook"), nil)
	req = httptest.NewRequest(http.MethodPost, "/v1/grade", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestInterview(t *testing.T) {
	t.Parallel()

	store := transcript.NewFileStore(filepath.Join(t.TempDir(), "data", "interviews.jsonl"))
	srv := newTestServer(t, store)

	body, contentType := multipartBody(t, completedWorkbook(t, false), map[string]string{
		"q1": "It is an absolute reference",
		"q2": "To summarise large tables",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/interviews", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp interviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	iv := resp.Interview
	require.NotNil(t, iv)
	assert.Equal(t, transcript.StageSummary, iv.Stage)
	require.NotNil(t, iv.Deterministic)
	assert.True(t, iv.Deterministic.Pass)
	require.NotNil(t, iv.FusedScore)
	assert.Equal(t, 100, *iv.FusedScore)
	assert.Equal(t, 4, iv.LLMFeedback.Q1.Score)

	records, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, iv.ID, records[0].ID)
}

func TestInterview_StoreFailure(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, failingStore{})

	body, contentType := multipartBody(t, completedWorkbook(t, false), map[string]string{"q1": "a"})
	req := httptest.NewRequest(http.MethodPost, "/v1/interviews", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, failingStore{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
}

func TestRun_Shutdown(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, failingStore{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestUpload_TooLarge(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, failingStore{})
	oversized := bytes.Repeat([]byte{'x'}, int(testConfig().MaxUploadBytes)+1024)

	for _, path := range []string{"/v1/grade", "/v1/interviews"} {
		body, contentType := multipartBody(t, oversized, map[string]string{"q1": "absolute"})
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, path)
	}
}

func TestUpload_TooLargeUnknownLength(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, failingStore{})
	oversized := bytes.Repeat([]byte{'x'}, int(testConfig().MaxUploadBytes)+1024)

	body, contentType := multipartBody(t, oversized, map[string]string{"q1": "absolute"})
	// Hide the length so only the body limit can catch it.
	req := httptest.NewRequest(http.MethodPost, "/v1/interviews", io.MultiReader(body))
	req.Header.Set("Content-Type", contentType)
	require.EqualValues(t, -1, req.ContentLength)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
