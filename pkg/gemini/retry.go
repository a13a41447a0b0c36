package gemini

import (
	"net/http"
	"time"

	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

// retryMiddleware re-sends a request when the provider answers with one of
// the configured transient status codes, waiting initialDelay * expBase^n
// between attempts. Requests without a rewindable body are never re-sent.
func retryMiddleware(cfg RetryConfig, sleep func(time.Duration)) option.Middleware {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	expBase := cfg.ExpBase
	if expBase < 1 {
		expBase = 1
	}

	retryable := make(map[int]bool, len(cfg.RetryableCodes))
	for _, code := range cfg.RetryableCodes {
		retryable[code] = true
	}

	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		delay := cfg.InitialDelay

		var resp *http.Response
		var err error
		for attempt := 1; attempt <= attempts; attempt++ {
			if attempt > 1 {
				if req.GetBody == nil && req.Body != nil {
					return resp, err
				}
				if req.GetBody != nil {
					body, bodyErr := req.GetBody()
					if bodyErr != nil {
						return resp, err
					}
					req.Body = body
				}
			}

			resp, err = next(req)
			if err != nil {
				return nil, err
			}
			if !retryable[resp.StatusCode] || attempt == attempts {
				return resp, nil
			}

			resp.Body.Close()
			log.Warn().
				Int("status", resp.StatusCode).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("transient model provider failure, retrying")
			sleep(delay)
			delay = time.Duration(float64(delay) * expBase)
		}
		return resp, err
	}
}
