// Package services holds clients for external systems. The only one today is
// the sync proxy, the HTTP endpoint that receives finished playlists for the
// listening station.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/rotor/internal/shared"
)

// SyncService pushes generated playlists to the sync proxy. Requests are rate
// limited client-side so repeated pushes stay under the proxy's throttle.
type SyncService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// PushReceipt is the proxy's acknowledgement of an accepted playlist.
type PushReceipt struct {
	RemoteID string `json:"remote_id"`
	Accepted int    `json:"accepted"`
	Message  string `json:"message"`
}

// NewSyncService creates a sync client for the configured proxy. A rate limit
// of zero or below falls back to one request per second.
func NewSyncService(cfg shared.SyncConfig, client *http.Client, logger *log.Logger) *SyncService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 1
	}

	return &SyncService{
		baseURL:    cfg.ProxyURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(limit), 1),
		logger:     logger,
	}
}

// Push uploads a rendered playlist payload to the proxy. The payload is the
// JSON document produced by the formatter package.
func (s *SyncService) Push(ctx context.Context, payload []byte) (*PushReceipt, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("%w: no proxy URL configured", shared.ErrSyncUnavailable)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/playlists", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSyncUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrSyncRejected, resp.StatusCode, truncate(body, 200))
	}

	receipt := &PushReceipt{}
	if err := json.Unmarshal(body, receipt); err != nil {
		// Some proxies reply with an empty body on success.
		receipt.Message = string(body)
	}

	s.logger.Info("playlist pushed", "remote_id", receipt.RemoteID, "accepted", receipt.Accepted)
	return receipt, nil
}

// Ping checks proxy reachability without sending a playlist.
func (s *SyncService) Ping(ctx context.Context) error {
	if s.baseURL == "" {
		return fmt.Errorf("%w: no proxy URL configured", shared.ErrSyncUnavailable)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSyncUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", shared.ErrSyncUnavailable, resp.StatusCode)
	}
	return nil
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
