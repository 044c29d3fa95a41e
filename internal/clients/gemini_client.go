package clients

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gkwang4912/speechwall/internal/models"
)

const (
	geminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	geminiRequestTimeout = 60 * time.Second
)

var (
	// ErrServiceUnavailable covers transport failures and 5xx replies;
	// callers retry these with backoff.
	ErrServiceUnavailable = errors.New("classification service unavailable")

	// ErrRequestRejected covers non-retryable replies (4xx other than 429).
	ErrRequestRejected = errors.New("classification request rejected")

	// ErrEmptyReply means the service answered 200 with no usable text.
	ErrEmptyReply = errors.New("empty reply from model")
)

// QuotaError signals rate-limit exhaustion. RetryAfter is zero when the
// service did not say how long to wait.
type QuotaError struct {
	RetryAfter time.Duration
}

func (e *QuotaError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("quota exhausted, retry after %s", e.RetryAfter)
	}
	return "quota exhausted"
}

var (
	geminiClientInstance *GeminiClient
	geminiOnce           sync.Once
)

type GeminiClient struct {
	Client  *http.Client
	BaseURL string
}

func GetGeminiClient() *GeminiClient {
	geminiOnce.Do(func() {
		geminiClientInstance = NewGeminiClient(geminiBaseURL)
		slog.Info("[GeminiClient] Client initialized",
			slog.Duration("timeout", geminiRequestTimeout))
	})
	return geminiClientInstance
}

func NewGeminiClient(baseURL string) *GeminiClient {
	return &GeminiClient{
		Client:  &http.Client{Timeout: geminiRequestTimeout},
		BaseURL: baseURL,
	}
}

// GenerateContent performs exactly one generateContent call and returns
// the reply text. It does not retry; the per-row attempt loop owns that
// policy. Errors are classified so the caller can tell a retryable
// failure from a quota wait from a dead end.
func (g *GeminiClient) GenerateContent(model, apiKey, prompt string) (string, error) {
	payload := models.GeminiRequest{
		Contents: []models.GeminiContent{
			{Parts: []models.GeminiPart{{Text: prompt}}},
		},
		GenerationConfig: models.GeminiGenerationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 8192,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.BaseURL, model, apiKey)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrServiceUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &QuotaError{RetryAfter: retryAfter(resp)}
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: status %d: %s", ErrRequestRejected, resp.StatusCode, preview(respBody))
	}

	var parsed models.GeminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		slog.Warn("[GeminiClient] Failed to unmarshal response",
			slog.String("error", err.Error()),
			slog.String("raw_response", preview(respBody)))
		return "", fmt.Errorf("%w: unparseable body", ErrEmptyReply)
	}

	text := parsed.FirstText()
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func preview(respBody []byte) string {
	raw := string(respBody)
	if len(raw) > 80 {
		raw = raw[:80]
	}
	return raw
}
