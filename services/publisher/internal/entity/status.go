package entity

import (
	"sort"
	"strings"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusApproved  PostStatus = "approved"
	StatusScheduled PostStatus = "scheduled"
	StatusPosted    PostStatus = "posted"
	StatusFailed    PostStatus = "failed"
	StatusRejected  PostStatus = "rejected"
)

var statusAliases = map[string]PostStatus{
	"draft":          StatusDraft,
	"pending":        StatusDraft,
	"pending_review": StatusDraft,
	"new":            StatusDraft,
	"approved":       StatusApproved,
	"ready":          StatusApproved,
	"ready_to_post":  StatusApproved,
	"scheduled":      StatusScheduled,
	"queued":         StatusScheduled,
	"posted":         StatusPosted,
	"published":      StatusPosted,
	"live":           StatusPosted,
	"failed":         StatusFailed,
	"error":          StatusFailed,
	"rejected":       StatusRejected,
	"declined":       StatusRejected,
	"denied":         StatusRejected,
}

// ParseStatus maps free-form and legacy status strings onto the canonical set.
// Anything unrecognized is treated as a draft so it can never be published by accident.
func ParseStatus(raw string) PostStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if status, ok := statusAliases[key]; ok {
		return status
	}
	return StatusDraft
}

// Publishable reports whether a post in this status may be pushed to a platform.
func (s PostStatus) Publishable() bool {
	return s == StatusApproved || s == StatusScheduled
}

// PublishableStatusValues lists every stored status string that parses to a publishable status.
func PublishableStatusValues() []string {
	values := make([]string, 0, len(statusAliases))
	for raw, status := range statusAliases {
		if status.Publishable() {
			values = append(values, raw)
		}
	}
	sort.Strings(values)
	return values
}
