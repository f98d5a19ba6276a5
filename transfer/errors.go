package transfer

import (
	"context"
	"errors"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/filexfer/filecache"
)

// Error codes returned by transfer operations.
const (
	// CodeCancelled marks an operation that observed cancellation.
	// It is a terminal state of its own and never reported as a failure.
	CodeCancelled = "CANCELLED"

	// CodeConnectionFailed is returned after retries are exhausted or on a
	// non-retriable transport failure.
	CodeConnectionFailed = "CONNECTION_FAILED"

	// CodeMalformedResponse is returned when a successful response body
	// cannot be decoded.
	CodeMalformedResponse = "MALFORMED_RESPONSE"

	// CodeIOFailure marks local disk failures. They are never retried.
	CodeIOFailure = filecache.CodeIOFailure
)

// IsCancelled reports whether err is the cancelled outcome.
func IsCancelled(err error) bool {
	return errx.IsCodeIn(err, CodeCancelled)
}

// IsConnectionFailed reports whether err is a connection failure.
func IsConnectionFailed(err error) bool {
	return errx.IsCodeIn(err, CodeConnectionFailed)
}

func errCancelled(cause error) error {
	if cause == nil {
		cause = context.Canceled
	}
	return errx.New("[transfer]: operation cancelled",
		errx.WithCode(CodeCancelled),
		errx.WithType(errx.T_Conflict),
		errx.WithDetails(errx.D{"cause": cause.Error()}),
	)
}

// cancelledOutcome returns the cancelled outcome when ctx is done or err is a
// raw cancellation, and nil otherwise.
func cancelledOutcome(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errCancelled(ctxErr)
	}
	if errors.Is(err, context.Canceled) {
		return errCancelled(err)
	}
	return nil
}

func ioFailure(msg string, cause error) error {
	return errx.New(msg,
		errx.WithCode(CodeIOFailure),
		errx.WithDetails(errx.D{"cause": cause.Error()}),
	)
}
