package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	DefaultConnectTimeout = 5 * time.Second
	defaultFlushDelay     = 200 * time.Millisecond
)

// SocketIOConfig configures the live-reload connection.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// SocketIO emits events to a socket.io server. The connection is opened
// lazily on the first Notify and reused until Close.
type SocketIO struct {
	cfg SocketIOConfig

	mu     sync.Mutex
	client *socket.Socket
}

// NewSocketIO validates cfg and returns a notifier. No connection is made yet.
func NewSocketIO(cfg SocketIOConfig) (*SocketIO, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse live-reload URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("live-reload URL %q must be absolute", cfg.URL)
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	return &SocketIO{cfg: cfg}, nil
}

// Notify emits one message per event.
func (s *SocketIO) Notify(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		client, err := s.connect(ctx)
		if err != nil {
			return err
		}
		s.client = client
	}

	logger := ctxlog.FromContext(ctx).With("sid", s.client.Id())
	for _, e := range events {
		logger.Debug("Emitting event", "event", e.Name, "bundle", e.Bundle)
		payload := map[string]any{
			"bundle":  e.Bundle,
			"version": int(e.Version),
			"plan":    e.Plan,
		}
		if err := s.client.Emit(e.Name, payload); err != nil {
			return fmt.Errorf("failed to emit %s for bundle %s: %w", e.Name, e.Bundle, err)
		}
	}
	return nil
}

// Close gives queued packets a moment to flush and disconnects.
func (s *SocketIO) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	time.Sleep(defaultFlushDelay)
	s.client.Disconnect()
	s.client = nil
	return nil
}

func (s *SocketIO) connect(ctx context.Context) (*socket.Socket, error) {
	logger := ctxlog.FromContext(ctx).With("url", s.cfg.URL)
	parsed, err := url.Parse(s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse live-reload URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsed.Path)
	if s.cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	opts.SetReconnection(false)

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(s.cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected to live-reload server", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	io.Connect()

	timer := time.NewTimer(s.cfg.ConnectTimeout)
	defer timer.Stop()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", s.cfg.ConnectTimeout)
	}
}
