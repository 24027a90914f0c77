package platform

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

const (
	containerFinished   = "FINISHED"
	containerInProgress = "IN_PROGRESS"
	containerError      = "ERROR"
	containerExpired    = "EXPIRED"
	containerPublished  = "PUBLISHED"
)

// ContainerPoller waits for an Instagram media container to finish processing.
type ContainerPoller struct {
	client   *GraphClient
	token    string
	executor failsafe.Executor[string]
}

func NewContainerPoller(client *GraphClient, token string, maxAttempts int, interval time.Duration) *ContainerPoller {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	policy := retrypolicy.NewBuilder[string]().
		HandleIf(func(status string, err error) bool {
			return err == nil && (status == containerInProgress || status == "")
		}).
		WithMaxAttempts(maxAttempts).
		WithDelay(interval).
		ReturnLastFailure().
		Build()

	return &ContainerPoller{
		client:   client,
		token:    token,
		executor: failsafe.With[string](policy),
	}
}

type containerStatus struct {
	StatusCode string `json:"status_code"`
	Status     string `json:"status"`
}

// WaitReady returns nil once the container is FINISHED and ErrProcessingTimeout when attempts run out.
func (p *ContainerPoller) WaitReady(ctx context.Context, containerID string) error {
	var detail string
	status, err := p.executor.WithContext(ctx).Get(func() (string, error) {
		var resp containerStatus
		params := url.Values{
			"fields":       {"status_code,status"},
			"access_token": {p.token},
		}
		if _, err := p.client.Get(ctx, containerID, params, &resp); err != nil {
			return "", err
		}
		detail = resp.Status
		return resp.StatusCode, nil
	})
	if err != nil {
		return err
	}

	switch status {
	case containerFinished, containerPublished:
		return nil
	case containerError, containerExpired:
		return fmt.Errorf("media container %s failed with status %s: %s", containerID, status, detail)
	default:
		return fmt.Errorf("%w: container %s still %s", ErrProcessingTimeout, containerID, status)
	}
}
