package platform

import (
	"context"
	"fmt"
	"net/url"

	"social-publisher/services/publisher/internal/entity"
)

type InstagramPublisher struct {
	client *GraphClient
	poller *ContainerPoller
	userID string
	token  string
}

func NewInstagramPublisher(client *GraphClient, poller *ContainerPoller, userID, token string) *InstagramPublisher {
	return &InstagramPublisher{
		client: client,
		poller: poller,
		userID: userID,
		token:  token,
	}
}

type graphID struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

func (p *InstagramPublisher) Publish(ctx context.Context, req Request) (*Result, error) {
	params := url.Values{
		"caption":      {req.Caption},
		"access_token": {p.token},
	}
	switch req.Media.Kind {
	case entity.MediaVideo:
		params.Set("media_type", "REELS")
		params.Set("video_url", req.Media.URL)
	case entity.MediaImage:
		params.Set("image_url", req.Media.URL)
	default:
		return nil, entity.ErrNoMedia
	}

	var container graphID
	raw, err := p.client.PostForm(ctx, p.userID+"/media", params, &container)
	if err != nil {
		return &Result{RawResponse: raw}, fmt.Errorf("failed to create media container: %w", err)
	}
	if container.ID == "" {
		return &Result{RawResponse: raw}, fmt.Errorf("media container response has no id")
	}

	if err := p.poller.WaitReady(ctx, container.ID); err != nil {
		return &Result{RawResponse: raw}, err
	}

	var published graphID
	raw, err = p.client.PostForm(ctx, p.userID+"/media_publish", url.Values{
		"creation_id":  {container.ID},
		"access_token": {p.token},
	}, &published)
	if err != nil {
		return &Result{RawResponse: raw}, fmt.Errorf("failed to publish media container: %w", err)
	}
	if published.ID == "" {
		return &Result{RawResponse: raw}, fmt.Errorf("media publish response has no id")
	}

	return &Result{PostID: published.ID, RawResponse: raw}, nil
}
