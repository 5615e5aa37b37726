package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cosmo-agent/internal/config"
	"cosmo-agent/internal/model"
)

const maxErrorBody = 512

type StoreClient interface {
	FetchPending(ctx context.Context) (*model.PendingSnapshot, error)
	ReportDelivered(ctx context.Context, orderID uint64) error
	ReportActionCompleted(ctx context.Context, actionID uint64) error
	ReportActionExpired(ctx context.Context, actionID uint64) error
}

type storeClientImpl struct {
	httpClient  *http.Client
	instanceURL string
	serverToken string
}

func NewStoreClient(storeCfg *config.Store) StoreClient {
	return &storeClientImpl{
		httpClient: &http.Client{
			Timeout: storeCfg.RequestTimeout,
		},
		instanceURL: storeCfg.InstanceURL,
		serverToken: storeCfg.ServerToken,
	}
}

func (c *storeClientImpl) FetchPending(ctx context.Context) (*model.PendingSnapshot, error) {
	body, err := c.call(ctx, http.MethodGet, "api/game/store/pending", http.StatusOK)
	if err != nil {
		return nil, err
	}

	var snapshot model.PendingSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("decode pending response: %w", err)
	}
	snapshot.Link()

	return &snapshot, nil
}

func (c *storeClientImpl) ReportDelivered(ctx context.Context, orderID uint64) error {
	_, err := c.call(ctx, http.MethodPost, fmt.Sprintf("api/game/store/orders/%d/deliver", orderID), http.StatusOK)
	return err
}

func (c *storeClientImpl) ReportActionCompleted(ctx context.Context, actionID uint64) error {
	_, err := c.call(ctx, http.MethodPost, fmt.Sprintf("api/game/store/actions/%d/complete", actionID), http.StatusOK)
	return err
}

func (c *storeClientImpl) ReportActionExpired(ctx context.Context, actionID uint64) error {
	_, err := c.call(ctx, http.MethodPost, fmt.Sprintf("api/game/store/actions/%d/expire", actionID), http.StatusOK)
	return err
}

func (c *storeClientImpl) call(ctx context.Context, method, path string, expectedStatus int) ([]byte, error) {
	url := joinURL(c.instanceURL, path)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create store request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serverToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.TransportError{Method: method, URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != expectedStatus {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &model.UnexpectedStatusError{
			URL:      url,
			Expected: expectedStatus,
			Got:      resp.StatusCode,
			Body:     string(body),
		}
	}

	return body, nil
}

// joinURL drops one trailing slash from base and one leading slash from path.
func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
