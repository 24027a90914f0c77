package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

func ParsePlatform(raw string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(raw))); p {
	case PlatformInstagram, PlatformFacebook:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported platform %q", raw)
	}
}

// MaxContentIDLength matches the width of the content id columns.
const MaxContentIDLength = 64

type Post struct {
	ID               string     `json:"id"`
	Platform         Platform   `json:"platform"`
	Status           PostStatus `json:"status"`
	Text             string     `json:"text"`
	Hashtags         []string   `json:"hashtags"`
	VideoURL         string     `json:"video_url,omitempty"`
	StitchedImageURL string     `json:"stitched_image_url,omitempty"`
	ImageAfterURL    string     `json:"image_after_url,omitempty"`
	ScheduledAt      time.Time  `json:"scheduled_at"`
	PlatformPostID   string     `json:"platform_post_id,omitempty"`
	PostedAt         *time.Time `json:"posted_at,omitempty"`
	LastError        string     `json:"last_error,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Caption joins the post text with its hashtags, adding '#' where missing.
func (p *Post) Caption() string {
	if len(p.Hashtags) == 0 {
		return p.Text
	}
	tags := make([]string, 0, len(p.Hashtags))
	for _, tag := range p.Hashtags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return p.Text
	}
	if p.Text == "" {
		return strings.Join(tags, " ")
	}
	return p.Text + "\n\n" + strings.Join(tags, " ")
}

func (p *Post) Media() (MediaRef, error) {
	return ResolveMedia(p.VideoURL, p.StitchedImageURL, p.ImageAfterURL)
}

// ImageURLs mirrors the content pipeline's before/after image pair.
type ImageURLs struct {
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// PublishRequest is the wire shape accepted by the publish operation.
type PublishRequest struct {
	ID               string     `json:"id" binding:"required"`
	Platform         string     `json:"platform" binding:"required"`
	Status           string     `json:"status"`
	Text             string     `json:"text"`
	Hashtags         []string   `json:"hashtags"`
	VideoURL         string     `json:"videoUrl"`
	StitchedImageURL string     `json:"stitchedImageUrl"`
	ImageURLs        *ImageURLs `json:"imageUrls"`
	ScheduledAt      *time.Time `json:"scheduledAt"`
	PlatformPostID   string     `json:"platformPostId"`
}

// ToPost validates the platform and normalizes the request into a Post.
func (r *PublishRequest) ToPost() (*Post, error) {
	if strings.TrimSpace(r.ID) == "" {
		return nil, errors.New("content id is required")
	}
	if len(r.ID) > MaxContentIDLength {
		return nil, fmt.Errorf("content id is %d bytes, longer than %d", len(r.ID), MaxContentIDLength)
	}
	platform, err := ParsePlatform(r.Platform)
	if err != nil {
		return nil, err
	}
	post := &Post{
		ID:               r.ID,
		Platform:         platform,
		Status:           ParseStatus(r.Status),
		Text:             r.Text,
		Hashtags:         r.Hashtags,
		VideoURL:         r.VideoURL,
		StitchedImageURL: r.StitchedImageURL,
		PlatformPostID:   r.PlatformPostID,
	}
	if r.ImageURLs != nil {
		post.ImageAfterURL = r.ImageURLs.After
	}
	if r.ScheduledAt != nil {
		post.ScheduledAt = r.ScheduledAt.UTC()
	}
	return post, nil
}

// RequestFromPost builds the publish input for a stored post.
func RequestFromPost(p *Post) PublishRequest {
	req := PublishRequest{
		ID:               p.ID,
		Platform:         string(p.Platform),
		Status:           string(p.Status),
		Text:             p.Text,
		Hashtags:         p.Hashtags,
		VideoURL:         p.VideoURL,
		StitchedImageURL: p.StitchedImageURL,
		PlatformPostID:   p.PlatformPostID,
	}
	if p.ImageAfterURL != "" {
		req.ImageURLs = &ImageURLs{After: p.ImageAfterURL}
	}
	if !p.ScheduledAt.IsZero() {
		at := p.ScheduledAt
		req.ScheduledAt = &at
	}
	return req
}
