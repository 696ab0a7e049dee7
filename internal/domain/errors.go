package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidUpload      = errors.New("invalid upload")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrUnknownProduct     = errors.New("unknown product")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrTransientNetwork   = errors.New("transient network failure")
	ErrProviderRejected   = errors.New("provider rejected request")
	ErrPollTimeout        = errors.New("poll timeout")
	ErrTaskFailed         = errors.New("provider task failed")
	ErrNoMockups          = errors.New("no mockups generated")
	ErrMissingMockup      = errors.New("no mockup for product")
)

// ErrorKind maps an error onto the taxonomy name reported to API callers.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownProduct):
		return "UnknownProduct"
	case errors.Is(err, ErrPollTimeout):
		return "PollTimeout"
	case errors.Is(err, ErrTaskFailed):
		return "TaskFailed"
	case errors.Is(err, ErrRateLimitExceeded):
		return "RateLimitExceeded"
	case errors.Is(err, ErrTransientNetwork):
		return "TransientNetworkFailure"
	case errors.Is(err, ErrProviderRejected):
		return "ProviderError"
	case errors.Is(err, ErrMissingCredentials):
		return "MissingCredentials"
	case errors.Is(err, ErrInvalidUpload):
		return "InvalidUpload"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrNoMockups):
		return "NoMockups"
	case errors.Is(err, ErrMissingMockup):
		return "MissingMockup"
	default:
		return "Internal"
	}
}
