// Package ollama is the client for the local summarization service:
// availability probing, generation, and parsing of the structured
// suggestion the pipeline asks the model for.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// Client talks to an Ollama host over its HTTP API.
type Client struct {
	host       string
	model      string
	httpClient *http.Client
}

// New builds a client for host/model. Request deadlines come from the
// caller's context, not a client-wide timeout, so the first call of a
// run can be given extra headroom for model cold start.
func New(host, model string) *Client {
	return &Client{
		host:       strings.TrimRight(host, "/"),
		model:      model,
		httpClient: &http.Client{},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Suggestion is the structured triple the model must return for a
// document: a bounded summary, a category pick, and whether that
// category is a new proposal.
type Suggestion struct {
	Summary       string `json:"summary"`
	Category      string `json:"category"`
	IsNewCategory bool   `json:"is_new_category"`
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	Stream      bool    `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// CheckModel probes GET /api/tags and verifies the configured model is
// present. Used to fail a whole summarize run fast instead of failing
// file by file.
func (c *Client) CheckModel(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable at %s: %w", c.host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama tags status %d", resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("decode tags response: %w", err)
	}
	for _, m := range tags.Models {
		if strings.Contains(m.Name, c.model) {
			return nil
		}
	}
	return fmt.Errorf("model %q not available on %s", c.model, c.host)
}

// Generate posts a prompt to /api/generate and returns the raw response
// text. Transient failures come back as *RetryableError.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:       c.model,
		Prompt:      prompt,
		Temperature: temperature,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", &RetryableError{Message: err.Error()}
		}
		// Connection-level failure: the host is down, retrying per
		// request will not bring it back.
		return "", fmt.Errorf("ollama connect: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return strings.TrimSpace(gen.Response), nil
}

// Suggest runs Generate and parses the response as a Suggestion,
// tolerating code-fence wrapping. A response that does not parse is a
// retryable failure: local models intermittently emit prose around the
// JSON they were asked for.
func (c *Client) Suggest(ctx context.Context, prompt string, temperature float64) (*Suggestion, error) {
	text, err := c.Generate(ctx, prompt, temperature)
	if err != nil {
		return nil, err
	}

	text = StripCodeFence(text)
	var s Suggestion
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, &RetryableError{
			Message: fmt.Sprintf("malformed suggestion json: %v (raw: %s)", err, truncate(text, 200)),
		}
	}
	s.Summary = strings.TrimSpace(s.Summary)
	if s.Category == "" {
		s.Category = "Junk"
	}
	return &s, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

var codeFenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeFence unwraps a response the model wrapped in ``` delimiters.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RetryableError indicates a transient failure worth retrying: a
// request timeout, a 429/5xx, or a malformed model response.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
	}
	return fmt.Sprintf("retryable error: %s", truncate(e.Message, 200))
}
