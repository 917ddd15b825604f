package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash-latest"
	DefaultTimeout = 15 * time.Second

	maxErrorBody = 2048
)

var (
	ErrMissingAPIKey  = errors.New("gemini api key is required")
	ErrEmptyCandidate = errors.New("gemini returned no text candidate")
)

// StatusError is returned when Gemini answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini status %d: %s", e.Code, e.Body)
}

// KeyFunc resolves the API key for each call so that keys rotated in the
// integration token store take effect without a restart.
type KeyFunc func(ctx context.Context) (string, error)

// StaticKey returns a KeyFunc that always yields key.
func StaticKey(key string) KeyFunc {
	key = strings.TrimSpace(key)
	return func(context.Context) (string, error) { return key, nil }
}

type Options struct {
	APIKey     string
	Key        KeyFunc
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Config tunes a single generateContent call.
type Config struct {
	Temperature      float64
	ResponseMimeType string
}

// Client is a thin generateContent transport.
type Client struct {
	key     KeyFunc
	model   string
	baseURL string
	client  *http.Client
}

type request struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type response struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func NewClient(opts Options) *Client {
	key := opts.Key
	if key == nil {
		key = StaticKey(opts.APIKey)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{key: key, model: model, baseURL: baseURL, client: client}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// GenerateText sends text as a single user turn and returns the first
// non-blank candidate part.
func (c *Client) GenerateText(ctx context.Context, text string, cfg Config) (string, error) {
	key, err := c.key(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve gemini key: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return "", ErrMissingAPIKey
	}

	payload := request{
		Contents: []content{{Role: "user", Parts: []part{{Text: text}}}},
	}
	if cfg.Temperature > 0 || cfg.ResponseMimeType != "" {
		payload.GenerationConfig = &generationConfig{
			Temperature:      cfg.Temperature,
			CandidateCount:   1,
			ResponseMimeType: cfg.ResponseMimeType,
		}
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(key), &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			if strings.TrimSpace(p.Text) != "" {
				return p.Text, nil
			}
		}
	}
	return "", ErrEmptyCandidate
}

func (c *Client) endpoint(key string) string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(key))
}
