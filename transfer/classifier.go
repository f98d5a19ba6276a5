package transfer

import (
	"net/http"

	"github.com/rise-and-shine/filexfer/httpx"
)

// Verdict is the classification of one attempt.
type Verdict int

const (
	// VerdictSuccess ends the loop with the response.
	VerdictSuccess Verdict = iota
	// VerdictRetry marks a transient failure.
	VerdictRetry
	// VerdictFail marks a failure that is not worth retrying.
	VerdictFail
)

func (v Verdict) String() string {
	switch v {
	case VerdictSuccess:
		return "success"
	case VerdictRetry:
		return "retry"
	default:
		return "fail"
	}
}

// Classifier decides the verdict of one attempt from its response or
// transport error. Exactly one of resp and err is non-nil.
type Classifier func(resp *httpx.Response, err error) Verdict

// DefaultClassifier treats transport errors, 5xx, 408 and 429 as transient.
// Other 4xx responses fail at once unless retryClientErrors is set.
func DefaultClassifier(retryClientErrors bool) Classifier {
	return func(resp *httpx.Response, err error) Verdict {
		if err != nil {
			return VerdictRetry
		}
		if resp.IsSuccess() {
			return VerdictSuccess
		}

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return VerdictRetry
		case resp.StatusCode == http.StatusRequestTimeout,
			resp.StatusCode == http.StatusTooManyRequests:
			return VerdictRetry
		case resp.StatusCode >= http.StatusBadRequest:
			if retryClientErrors {
				return VerdictRetry
			}
			return VerdictFail
		default:
			return VerdictFail
		}
	}
}
