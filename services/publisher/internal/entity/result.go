package entity

// ErrorKind is the stable, machine-checkable reason a publish did not succeed.
type ErrorKind string

const (
	ErrPostingPaused     ErrorKind = "POSTING_PAUSED"
	ErrPlatformDisabled  ErrorKind = "PLATFORM_DISABLED"
	ErrRateCapExceeded   ErrorKind = "RATE_CAP_EXCEEDED"
	ErrCooldownActive    ErrorKind = "COOLDOWN_ACTIVE"
	ErrNotApproved       ErrorKind = "NOT_APPROVED"
	ErrDuplicateBlocked  ErrorKind = "DUPLICATE_BLOCKED"
	ErrInvalidPost       ErrorKind = "INVALID_POST"
	ErrPlatformError     ErrorKind = "PLATFORM_ERROR"
	ErrProcessingTimeout ErrorKind = "PROCESSING_TIMEOUT"
	ErrInternal          ErrorKind = "INTERNAL_ERROR"
)

// Blocking reports whether the kind is decided by a gate before any platform call.
func (k ErrorKind) Blocking() bool {
	switch k {
	case ErrPostingPaused, ErrPlatformDisabled, ErrRateCapExceeded, ErrCooldownActive,
		ErrNotApproved, ErrDuplicateBlocked, ErrInvalidPost:
		return true
	default:
		return false
	}
}

type PublishResult struct {
	Success bool      `json:"success"`
	PostID  string    `json:"postId,omitempty"`
	Error   ErrorKind `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`
}

func Succeeded(postID string) PublishResult {
	return PublishResult{Success: true, PostID: postID}
}

func Failed(kind ErrorKind, message string) PublishResult {
	return PublishResult{Success: false, Error: kind, Message: message}
}
