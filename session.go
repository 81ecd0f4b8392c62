package limber

import "net/http"

// session owns the underlying *http.Client for one Running period of the
// lifecycle Unstarted → Running → Stopped → Running → … . A fresh session is
// created on every start so a stopped client transparently restarts on the
// next call.
type session struct {
	httpClient *http.Client
}

func (c *Client) newSession() *session {
	return &session{
		httpClient: &http.Client{
			Timeout:   c.timeout,
			Transport: c.transport,
		},
	}
}

// Start creates the underlying session if one is not already live. Starting a
// running client is a no-op.
func (c *Client) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startLocked()
}

func (c *Client) startLocked() *session {
	if c.session == nil {
		c.session = c.newSession()
		c.metrics.RecordSessionStart()
		if c.debugEnabled() && c.logger != nil {
			c.logger.Debug("Session started")
		}
	}
	return c.session
}

// Stop releases the underlying session. Stopping a client that is not running
// is a no-op; the next request lazily starts a fresh session.
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return
	}
	c.session.httpClient.CloseIdleConnections()
	c.session = nil
	c.metrics.RecordSessionStop()
	if c.debugEnabled() && c.logger != nil {
		c.logger.Debug("Session stopped")
	}
}

// IsRunning reports whether the client currently holds a live session.
func (c *Client) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// ensureSession lazily starts the session and returns it.
func (c *Client) ensureSession() *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked()
}

// WithSession brackets fn between Start and a guaranteed Stop, mirroring
// scoped-resource usage: the session is released even when fn fails or
// panics.
func (c *Client) WithSession(fn func(*Client) error) error {
	c.Start()
	defer c.Stop()
	return fn(c)
}

func (c *Client) debugEnabled() bool {
	return c.debug != nil && c.debug.Enabled
}
