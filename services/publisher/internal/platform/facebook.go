package platform

import (
	"context"
	"fmt"
	"net/url"

	"social-publisher/services/publisher/internal/entity"
)

type FacebookPublisher struct {
	client *GraphClient
	pageID string
	token  string
}

func NewFacebookPublisher(client *GraphClient, pageID, token string) *FacebookPublisher {
	return &FacebookPublisher{client: client, pageID: pageID, token: token}
}

func (p *FacebookPublisher) Publish(ctx context.Context, req Request) (*Result, error) {
	var (
		path   string
		params = url.Values{"access_token": {p.token}}
	)
	switch req.Media.Kind {
	case entity.MediaVideo:
		path = p.pageID + "/videos"
		params.Set("file_url", req.Media.URL)
		params.Set("description", req.Caption)
	case entity.MediaImage:
		path = p.pageID + "/photos"
		params.Set("url", req.Media.URL)
		params.Set("caption", req.Caption)
	default:
		return nil, entity.ErrNoMedia
	}

	var resp graphID
	raw, err := p.client.PostForm(ctx, path, params, &resp)
	if err != nil {
		return &Result{RawResponse: raw}, fmt.Errorf("facebook publish failed: %w", err)
	}

	// Photo uploads return both the photo id and the feed post id; the post id is the one to keep.
	postID := resp.PostID
	if postID == "" {
		postID = resp.ID
	}
	if postID == "" {
		return &Result{RawResponse: raw}, fmt.Errorf("facebook response has no id")
	}
	return &Result{PostID: postID, RawResponse: raw}, nil
}
