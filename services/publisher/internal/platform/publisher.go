package platform

import (
	"context"
	"errors"
	"fmt"

	"social-publisher/services/publisher/internal/entity"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrProcessingTimeout means the platform never finished processing the media within the polling budget.
	ErrProcessingTimeout = errors.New("media processing timed out")
)

type Request struct {
	Platform entity.Platform
	Media    entity.MediaRef
	Caption  string
}

type Result struct {
	PostID      string
	RawResponse string
}

// Publisher pushes one piece of media to a platform and returns the platform's post id.
type Publisher interface {
	Publish(ctx context.Context, req Request) (*Result, error)
}

type Registry struct {
	publishers map[entity.Platform]Publisher
}

func NewRegistry() *Registry {
	return &Registry{publishers: make(map[entity.Platform]Publisher)}
}

func (r *Registry) Register(p entity.Platform, publisher Publisher) {
	r.publishers[p] = publisher
}

func (r *Registry) Publisher(p entity.Platform) (Publisher, error) {
	publisher, ok := r.publishers[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p)
	}
	return publisher, nil
}
