package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
)

// Defaults for the chat-completions backend.
const (
	DefaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultModel     = "gemini-2.5-flash-lite"
	DefaultMaxTokens = 200
	DefaultTimeout   = 30 * time.Second

	// unparsedScore is given to replies that are not a JSON feedback object.
	unparsedScore = 3
	maxScore      = 5
)

const systemPrompt = "You are an expert Excel grader. Provide a JSON with 'score' (0-5) and 'explanation'. Keep output compact."

// ErrBackend indicates the scoring backend returned an unusable response.
var ErrBackend = errors.New("scoring backend error")

// RemoteConfig configures an OpenAI-compatible chat-completions backend.
type RemoteConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Remote scores payloads with a language model over HTTP.
type Remote struct {
	cfg    RemoteConfig
	client *http.Client
}

// NewRemote creates a remote scorer. Zero fields take the package defaults.
func NewRemote(cfg RemoteConfig) *Remote {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Remote{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// New returns the scorer for cfg: the remote backend with the stub as
// fallback when an API key is configured, otherwise the stub alone.
func New(cfg RemoteConfig, logger *slog.Logger) *Fallback {
	var primary Scorer
	if cfg.APIKey != "" {
		primary = NewRemote(cfg)
	}
	return WithFallback(primary, Stub{}, logger)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Score implements Scorer.
func (r *Remote) Score(ctx context.Context, kind Kind, payload any) (Feedback, error) {
	user, err := renderPayload(kind, payload)
	if err != nil {
		return Feedback{}, err
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: r.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: r.cfg.Temperature,
		MaxTokens:   r.cfg.MaxTokens,
	})
	if err != nil {
		return Feedback{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimSuffix(r.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return Feedback{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return Feedback{}, fmt.Errorf("failed to call scoring backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Feedback{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Feedback{}, fmt.Errorf("%w: status %d: %s", ErrBackend, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return Feedback{}, fmt.Errorf("%w: invalid response envelope: %v", ErrBackend, err)
	}
	if len(chat.Choices) == 0 {
		return Feedback{}, fmt.Errorf("%w: no choices in response", ErrBackend)
	}

	return parseFeedback(chat.Choices[0].Message.Content), nil
}

// renderPayload builds the user message. Reports are sent as their JSON form.
func renderPayload(kind Kind, payload any) (string, error) {
	switch kind {
	case KindConcept:
		return fmt.Sprintf("Kind: %s\nPayload: %v", kind, payload), nil
	case KindWorkbook:
		report, err := reportOf(payload)
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(report)
		if err != nil {
			return "", fmt.Errorf("failed to marshal report: %w", err)
		}
		return fmt.Sprintf("Kind: %s\nPayload: %s", kind, data), nil
	default:
		return "", fmt.Errorf("%w: kind %q", ErrUnsupportedPayload, kind)
	}
}

// parseFeedback reads a {"score", "explanation"} reply, optionally inside a
// markdown code fence. Anything else scores 3 with the reply as explanation.
func parseFeedback(content string) Feedback {
	text := strings.TrimSpace(content)

	var reply struct {
		Score       *float64 `json:"score"`
		Explanation string   `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &reply); err == nil && reply.Score != nil {
		score := math.Round(min(max(*reply.Score, 0), maxScore))
		return Feedback{Score: int(score), Explanation: reply.Explanation}
	}
	return Feedback{Score: unparsedScore, Explanation: text}
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}
	text = strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")
	text = strings.TrimPrefix(text, "json")
	return strings.TrimSpace(text)
}

var _ Scorer = (*Remote)(nil)
