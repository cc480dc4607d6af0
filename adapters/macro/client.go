// Package macro talks to the project-metadata service. Answers are
// advisory for the planning core: they gate which projects show up in
// weekly views, so stale data is acceptable and cached values are served
// when the upstream misbehaves.
package macro

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
)

type Client struct {
	log     *slog.Logger
	http    *http.Client
	baseURL string
	ttl     time.Duration

	mu            sync.Mutex
	activeIDs     map[string]struct{}
	activeFetched time.Time
	projects      map[string]cachedProject
}

type cachedProject struct {
	project core.Project
	fetched time.Time
}

func NewClient(log *slog.Logger, baseURL string, timeout, cacheTTL time.Duration) *Client {
	return &Client{
		log:      log,
		http:     &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		ttl:      cacheTTL,
		projects: make(map[string]cachedProject),
	}
}

// ActiveProjectIDs returns the ids of projects currently in delivery.
// Within the TTL the cached set is served without a round trip; on
// upstream failure a stale set is served when one exists, otherwise
// ErrUpstreamUnavailable.
func (c *Client) ActiveProjectIDs(ctx context.Context) (map[string]struct{}, error) {
	c.mu.Lock()
	cached, fetched := c.activeIDs, c.activeFetched
	c.mu.Unlock()

	if cached != nil && time.Since(fetched) < c.ttl {
		return cached, nil
	}

	var payload struct {
		ProjectIDs []string `json:"project_ids"`
	}
	if err := c.getJSON(ctx, "/api/projects/active", &payload); err != nil {
		if cached != nil {
			c.log.Warn("macro service failed, serving stale active set", "error", err)
			return cached, nil
		}
		return nil, fmt.Errorf("%w: %v", core.ErrUpstreamUnavailable, err)
	}

	ids := make(map[string]struct{}, len(payload.ProjectIDs))
	for _, id := range payload.ProjectIDs {
		ids[id] = struct{}{}
	}

	c.mu.Lock()
	c.activeIDs, c.activeFetched = ids, time.Now()
	c.mu.Unlock()
	return ids, nil
}

func (c *Client) Project(ctx context.Context, id string) (core.Project, error) {
	c.mu.Lock()
	cached, ok := c.projects[id]
	c.mu.Unlock()

	if ok && time.Since(cached.fetched) < c.ttl {
		return cached.project, nil
	}

	var p core.Project
	if err := c.getJSON(ctx, "/api/projects/"+url.PathEscape(id), &p); err != nil {
		if ok {
			c.log.Warn("macro service failed, serving stale project", "project", id, "error", err)
			return cached.project, nil
		}
		return core.Project{}, fmt.Errorf("%w: %v", core.ErrUpstreamUnavailable, err)
	}

	c.mu.Lock()
	c.projects[id] = cachedProject{project: p, fetched: time.Now()}
	c.mu.Unlock()
	return p, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("macro service status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
