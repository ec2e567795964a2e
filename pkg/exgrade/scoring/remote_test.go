package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/exgrade-go/internal/logging"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
)

// chatBackend answers every chat completion with reply and records the last request.
func chatBackend(t *testing.T, status int, reply string) (*httptest.Server, *chatRequest) {
	t.Helper()

	var last chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&last))

		if status != http.StatusOK {
			http.Error(w, "quota exceeded", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": reply}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func remoteConfig(baseURL string) RemoteConfig {
	return RemoteConfig{APIKey: "test-key", BaseURL: baseURL, Model: "grader-test"}
}

func TestRemote_JSONReply(t *testing.T) {
	t.Parallel()

	srv, last := chatBackend(t, http.StatusOK, `{"score": 4, "explanation": "Uses absolute references."}`)

	fb, err := NewRemote(remoteConfig(srv.URL)).Score(context.Background(), KindConcept, "$A$1 is absolute")
	require.NoError(t, err)
	assert.Equal(t, Feedback{Score: 4, Explanation: "Uses absolute references."}, fb)

	assert.Equal(t, "grader-test", last.Model)
	require.Len(t, last.Messages, 2)
	assert.Equal(t, "system", last.Messages[0].Role)
	assert.Equal(t, "Kind: concept\nPayload: $A$1 is absolute", last.Messages[1].Content)
}

func TestRemote_WorkbookPayloadIsReportJSON(t *testing.T) {
	t.Parallel()

	srv, last := chatBackend(t, http.StatusOK, "```json\n{\"score\": 5, \"explanation\": \"ok\"}\n```")

	fb, err := NewRemote(remoteConfig(srv.URL)).Score(context.Background(), KindWorkbook, &models.Report{RowCount: 3, Pass: true})
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Score)
	assert.True(t, strings.Contains(last.Messages[1].Content, `"row_count":3`))
}

func TestRemote_PlainTextReply(t *testing.T) {
	t.Parallel()

	srv, _ := chatBackend(t, http.StatusOK, "  The candidate mostly understands referencing.  ")

	fb, err := NewRemote(remoteConfig(srv.URL)).Score(context.Background(), KindConcept, "x")
	require.NoError(t, err)
	assert.Equal(t, Feedback{Score: 3, Explanation: "The candidate mostly understands referencing."}, fb)
}

func TestRemote_ScoreClamped(t *testing.T) {
	t.Parallel()

	srv, _ := chatBackend(t, http.StatusOK, `{"score": 9, "explanation": "excellent"}`)

	fb, err := NewRemote(remoteConfig(srv.URL)).Score(context.Background(), KindConcept, "x")
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Score)
}

func TestRemote_BackendError(t *testing.T) {
	t.Parallel()

	srv, _ := chatBackend(t, http.StatusTooManyRequests, "")

	_, err := NewRemote(remoteConfig(srv.URL)).Score(context.Background(), KindConcept, "x")
	assert.ErrorIs(t, err, ErrBackend)

	_, err = NewRemote(remoteConfig(srv.URL)).Score(context.Background(), Kind("essay"), "x")
	assert.ErrorIs(t, err, ErrUnsupportedPayload)
}

func TestNew_FallsBackToStub(t *testing.T) {
	t.Parallel()

	srv, _ := chatBackend(t, http.StatusInternalServerError, "")
	scorer := New(remoteConfig(srv.URL), logging.Discard())
	require.NotNil(t, scorer.Primary)

	fb, err := scorer.Score(context.Background(), KindConcept, "absolute reference")
	require.NoError(t, err)
	assert.Equal(t, 4, fb.Score)
	assert.Equal(t, "Good, you mentioned absolute referencing.", fb.Explanation)
}

func TestNew_WithoutKeyUsesStub(t *testing.T) {
	t.Parallel()

	scorer := New(RemoteConfig{}, logging.Discard())
	assert.Nil(t, scorer.Primary)

	fb, err := scorer.Score(context.Background(), KindWorkbook, &models.Report{Pass: true})
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Score)
}
