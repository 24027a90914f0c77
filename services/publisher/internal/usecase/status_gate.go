package usecase

import "social-publisher/services/publisher/internal/entity"

type StatusGate struct{}

func NewStatusGate() StatusGate {
	return StatusGate{}
}

// CanPublish parses a raw status and reports whether it is publishable. Unknown values never are.
func (StatusGate) CanPublish(raw string) (entity.PostStatus, bool) {
	status := entity.ParseStatus(raw)
	return status, status.Publishable()
}
