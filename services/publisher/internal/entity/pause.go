package entity

import (
	"strings"
	"time"
)

// PauseScope is either GlobalScope or "platform:<name>".
type PauseScope string

const GlobalScope PauseScope = "global"

const platformScopePrefix = "platform:"

func PlatformScope(p Platform) PauseScope {
	return PauseScope(platformScopePrefix + string(p))
}

// Platform returns the platform named by a platform scope, or "" for the global scope.
func (s PauseScope) Platform() Platform {
	name, ok := strings.CutPrefix(string(s), platformScopePrefix)
	if !ok {
		return ""
	}
	return Platform(name)
}

type PauseState struct {
	Scope       PauseScope `json:"scope"`
	Paused      bool       `json:"posting_paused"`
	Reason      string     `json:"paused_reason,omitempty"`
	Actor       string     `json:"paused_by,omitempty"`
	PausedAt    *time.Time `json:"paused_at,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}
