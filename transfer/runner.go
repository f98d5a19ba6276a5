package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/code19m/errx"

	"github.com/rise-and-shine/filexfer/httpx"
	"github.com/rise-and-shine/filexfer/observability/logger"
)

// errBodyLimit bounds how much of a failed response body is kept for details.
const errBodyLimit = 512

// Runner executes request descriptors with retries and exponential backoff.
// Attempt counters and timers are local to every Run call, so a Runner is
// safe for concurrent use.
type Runner struct {
	cfg      RetryConfig
	classify Classifier
	logger   logger.Logger
}

// NewRunner returns a Runner using cfg. A nil classify selects
// DefaultClassifier(cfg.RetryClientErrors), a nil log discards output.
func NewRunner(cfg RetryConfig, classify Classifier, log logger.Logger) *Runner {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultRetryConfig().MaxAttempts
	}
	if classify == nil {
		classify = DefaultClassifier(cfg.RetryClientErrors)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{cfg: cfg, classify: classify, logger: log}
}

// attemptError is the failure of one attempt.
type attemptError struct {
	status    int
	body      string
	cause     error
	retriable bool
	// local marks a request body that could not be read from disk.
	local bool
}

func (e *attemptError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return fmt.Sprintf("unexpected status %d %s", e.status, http.StatusText(e.status))
}

func (e *attemptError) Unwrap() error {
	return e.cause
}

// Run executes req on client until it succeeds, fails permanently, runs out
// of attempts or ctx is cancelled. On success the caller owns the response
// body. Failures are reported as ConnectionFailed, an unreadable request body
// as IOFailure without further attempts, cancellation as the cancelled
// outcome.
func (r *Runner) Run(ctx context.Context, client httpx.Client, req *httpx.Request) (*httpx.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, errCancelled(err)
	}

	log := r.logger.WithContext(ctx)
	var attempts uint

	resp, err := retry.DoWithData(
		func() (*httpx.Response, error) {
			attempts++
			return r.attempt(ctx, client, req)
		},
		retry.Context(ctx),
		retry.Attempts(r.cfg.MaxAttempts),
		retry.Delay(r.cfg.InitialDelay),
		retry.MaxDelay(r.cfg.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var ae *attemptError
			return errors.As(err, &ae) && ae.retriable
		}),
		retry.OnRetry(func(n uint, err error) {
			log.With(
				"error", err.Error(),
				"attempt", n+1,
				"max_attempts", r.cfg.MaxAttempts,
			).Warn("[transfer]: attempt failed")
		}),
	)
	if err == nil {
		return resp, nil
	}

	if cancelled := cancelledOutcome(ctx, err); cancelled != nil {
		return nil, cancelled
	}

	var ae *attemptError
	if errors.As(err, &ae) && ae.local {
		return nil, ioFailure("[transfer]: failed to read payload", ae.cause)
	}

	return nil, connectionFailed(err, attempts)
}

func (r *Runner) attempt(ctx context.Context, client httpx.Client, req *httpx.Request) (*httpx.Response, error) {
	resp, err := client.Execute(ctx, req)
	if err != nil && errx.IsCodeIn(err, httpx.CodeBodyUnavailable) {
		return nil, &attemptError{cause: err, local: true}
	}

	verdict := r.classify(resp, err)
	if err != nil {
		return nil, &attemptError{cause: err, retriable: verdict == VerdictRetry}
	}
	if verdict == VerdictSuccess {
		return resp, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	_ = resp.Close()

	return nil, &attemptError{
		status:    resp.StatusCode,
		body:      string(body),
		retriable: verdict == VerdictRetry,
	}
}

func connectionFailed(err error, attempts uint) error {
	details := errx.D{
		"cause":    err.Error(),
		"attempts": attempts,
	}

	var ae *attemptError
	if errors.As(err, &ae) && ae.status != 0 {
		details["status"] = ae.status
		if ae.body != "" {
			details["body"] = ae.body
		}
	}

	return errx.New("[transfer]: connection failed",
		errx.WithCode(CodeConnectionFailed),
		errx.WithDetails(details),
	)
}
