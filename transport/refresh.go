package transport

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "github.com/cloudopshq/cloudops-go/internal/errors"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// refreshAttempt is a shared in-flight refresh. Concurrent 401s coalesce
// behind one attempt so only a single refresh call reaches the backend no
// matter how many requests fail in the same instant.
type refreshAttempt struct {
	done   chan struct{}
	access string
	err    error
}

// refreshAccess exchanges the stored refresh token for a new access token.
// On success the new pair is committed to the credential store and the new
// access token is returned directly, so the retried request carries exactly
// the token produced by this refresh rather than a store read that might
// have been overwritten in the meantime. On failure the store is cleared
// and the session-expired hook fires, both exactly once per attempt.
func (c *Client) refreshAccess(ctx context.Context, staleAccess string) (string, error) {
	c.refreshLock.Lock()
	if attempt := c.inflight; attempt != nil {
		c.refreshLock.Unlock()
		select {
		case <-attempt.done:
			return attempt.access, attempt.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	// A refresh that completed after this request's 401 already produced a
	// newer token; reuse it instead of spending the refresh token again.
	if current := c.creds.Access(); current != "" && current != staleAccess {
		c.refreshLock.Unlock()
		return current, nil
	}
	attempt := &refreshAttempt{done: make(chan struct{})}
	c.inflight = attempt
	c.refreshLock.Unlock()

	attempt.access, attempt.err = c.doRefresh(ctx)
	close(attempt.done)

	c.refreshLock.Lock()
	c.inflight = nil
	c.refreshLock.Unlock()

	return attempt.access, attempt.err
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	refreshToken := c.creds.Refresh()
	if refreshToken == "" {
		// A concurrent failed attempt already cleared the store; it also
		// already fired the expiry hook, so just report the condition.
		return "", apperrors.ErrNoRefreshToken
	}

	requestID := uuid.New().String()
	body, err := json.Marshal(struct {
		Refresh string `json:"refresh"`
	}{Refresh: refreshToken})
	if err != nil {
		return "", errors.Wrap(err, "[Client.doRefresh] json.Marshal")
	}

	resp, sendErr := c.send(ctx, http.MethodPost, refreshPath, body, contentTypeJSON, "", requestID)
	if sendErr != nil {
		c.expireSession()
		return "", errors.Wrap(sendErr, "[Client.doRefresh] refresh request")
	}

	var refreshed struct {
		Access string `json:"access"`
	}
	if err := c.finish(resp, http.MethodPost, refreshPath, requestID, &refreshed, false); err != nil {
		c.expireSession()
		return "", errors.Wrap(err, "[Client.doRefresh] refresh rejected")
	}
	if refreshed.Access == "" {
		c.expireSession()
		return "", errors.New("[Client.doRefresh] refresh response missing access token")
	}

	if err := c.creds.Set(refreshed.Access, refreshToken); err != nil {
		return "", errors.Wrap(err, "[Client.doRefresh] storing refreshed token")
	}
	c.logger.Debug().Str("request_id", requestID).Msg("access token refreshed")
	return refreshed.Access, nil
}

// expireSession clears the stored credentials and notifies the hook. Called
// only from the owning refresh attempt, so the hook fires once per failure.
func (c *Client) expireSession() {
	_ = c.creds.Clear()
	c.logger.Info().Msg("session expired, credentials cleared")
	if c.onExpired != nil {
		c.onExpired()
	}
}
