// Package gemini configures an OpenAI-compatible client against the Gemini
// API endpoint, including the externally supplied retry policy for transient
// upstream failures.
package gemini

import (
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" split_words:"true" default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	APIKey      string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model       string        `envconfig:"MODEL" split_words:"true" default:"gemini-2.5-flash-lite"`
	Temperature float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`

	Retry RetryConfig `envconfig:"RETRY"`
}

// RetryConfig is the provider-retry policy: bounded attempts with exponential
// backoff against a fixed set of transient status codes. The tool core never
// retries model calls itself; this policy lives entirely at the client edge.
type RetryConfig struct {
	Attempts       int           `envconfig:"ATTEMPTS" split_words:"true" default:"5"`
	ExpBase        float64       `envconfig:"EXP_BASE" split_words:"true" default:"7"`
	InitialDelay   time.Duration `envconfig:"INITIAL_DELAY" split_words:"true" default:"1s"`
	RetryableCodes []int         `envconfig:"RETRYABLE_CODES" split_words:"true" default:"429,500,503,504"`
}

// NewClient builds the chat client. Returns nil when no API key is set so
// callers can fail fast with their own message.
func NewClient(cfg Config) *openaisdk.Client {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// The SDK's built-in retry is disabled; the configured policy below
		// is the single source of retry behavior.
		option.WithMaxRetries(0),
		option.WithMiddleware(retryMiddleware(cfg.Retry, time.Sleep)),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed+"/"))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}
