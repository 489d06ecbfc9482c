package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Do sends the request through the refresh pipeline: on a 401 the client
// performs one refresh (shared across all concurrent callers) and
// replays the request exactly once. A request is never retried twice; if
// the refresh fails the local session is cleared and the original 401 is
// returned to the caller.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	if err := c.Refresh(req.Context()); err != nil {
		// Refresh failed: the session is gone. Surface the original
		// unauthorized response so callers see what actually happened.
		return resp, nil
	}

	retry, err := cloneRequest(req)
	if err != nil {
		return resp, nil
	}

	// The new access-token cookie is already in the jar; drop the stale
	// response and replay once.
	drain(resp)

	return c.http.Do(retry)
}

// Refresh asks the server for a new access token using the refresh-token
// cookie. Concurrent callers share a single in-flight network call: the
// shared handle is installed before the call starts and released only
// once it settles, so a burst of expired-token failures produces exactly
// one refresh request. On failure the local user state is cleared.
func (c *Client) Refresh(ctx context.Context) error {
	_, err, _ := c.refresh.Do("refresh", func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/refresh-token", nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("refresh request failed: %w", err)
		}
		defer drain(resp)

		if resp.StatusCode != http.StatusOK {
			return nil, newAPIError(resp)
		}
		return nil, nil
	})
	if err != nil {
		c.setUser(nil)
	}
	return err
}

// cloneRequest rebuilds a request for replay, restoring the body from
// GetBody when one was attached. The first send appended the jar's
// cookies to the original request's header; that copy must be dropped so
// the jar alone supplies the fresh token on the replay.
func cloneRequest(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	retry.Header.Del("Cookie")
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	return retry, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
