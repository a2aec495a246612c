package posts

import "errors"

// Failure kinds surfaced by provider capabilities and the Service.
// Providers wrap these with context via fmt.Errorf and %w; callers
// match with errors.Is. The Service propagates them unchanged.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrPrivatePost        = errors.New("post is private")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrServiceUnavailable = errors.New("mirror service unavailable")
	ErrUnknown            = errors.New("unknown mirror error")
)
