package entity

import "errors"

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

const mediaSignatureLimit = 100

var ErrNoMedia = errors.New("post has no video or image url")

// MediaRef is either an image or a video, never both.
type MediaRef struct {
	Kind MediaKind `json:"kind"`
	URL  string    `json:"url"`
}

func Image(url string) MediaRef { return MediaRef{Kind: MediaImage, URL: url} }

func Video(url string) MediaRef { return MediaRef{Kind: MediaVideo, URL: url} }

func (m MediaRef) IsZero() bool { return m.URL == "" }

// Signature identifies the media for idempotency purposes. Long URLs are cut to a fixed prefix.
func (m MediaRef) Signature() string {
	sig := string(m.Kind) + ":" + m.URL
	if len(sig) > mediaSignatureLimit {
		sig = sig[:mediaSignatureLimit]
	}
	return sig
}

// ResolveMedia picks the publishable asset: a video wins over a stitched image, which wins over the
// "after" image.
func ResolveMedia(videoURL, stitchedImageURL, afterImageURL string) (MediaRef, error) {
	switch {
	case videoURL != "":
		return Video(videoURL), nil
	case stitchedImageURL != "":
		return Image(stitchedImageURL), nil
	case afterImageURL != "":
		return Image(afterImageURL), nil
	default:
		return MediaRef{}, ErrNoMedia
	}
}
