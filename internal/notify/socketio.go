// Package notify publishes finished reports to a socket.io server, for
// dashboards that follow grading runs live.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/vk/gradegrid/internal/report"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	DefaultEvent    = "report"
	DefaultAckEvent = "report_received"
	DefaultTimeout  = 10 * time.Second
)

// Options configures a SocketIO publisher.
type Options struct {
	// URL is the server address; its path selects the namespace.
	URL                string
	Event              string
	AckEvent           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// SocketIO emits a report as one event and waits for the server to
// acknowledge it.
type SocketIO struct {
	opts      Options
	baseURL   string
	namespace string
}

// NewSocketIO validates opts and fills in defaults.
func NewSocketIO(opts Options) (*SocketIO, error) {
	parsed, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("notify URL %q: scheme must be http, https, ws or wss", opts.URL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("notify URL %q: missing host", opts.URL)
	}

	if opts.Event == "" {
		opts.Event = DefaultEvent
	}
	if opts.AckEvent == "" {
		opts.AckEvent = DefaultAckEvent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	namespace := parsed.Path
	if namespace == "" {
		namespace = "/"
	}
	return &SocketIO{
		opts:      opts,
		baseURL:   fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host),
		namespace: namespace,
	}, nil
}

// Publish connects, emits the report and waits for the acknowledgement. The
// whole exchange is bounded by the configured timeout.
func (s *SocketIO) Publish(ctx context.Context, rep *report.Report) error {
	logger := ctxlog.FromContext(ctx).With("notify_url", s.opts.URL, "namespace", s.namespace)

	payload, err := rep.Payload()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	io, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer io.Disconnect()

	acked := make(chan struct{}, 1)
	io.Once(types.EventName(s.opts.AckEvent), func(...any) {
		logger.Debug("Acknowledgement received.", "event", s.opts.AckEvent)
		acked <- struct{}{}
	})

	logger.Debug("Emitting report.", "event", s.opts.Event, "sid", io.Id())
	io.Emit(s.opts.Event, payload)

	select {
	case <-acked:
		logger.Info("Report published.", "check", rep.Check)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out after %s waiting for '%s'", s.opts.Timeout, s.opts.AckEvent)
	}
}

func (s *SocketIO) connect(ctx context.Context) (*socket.Socket, error) {
	logger := ctxlog.FromContext(ctx)

	opts := socket.DefaultOptions()
	if s.opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 2)
	manager := socket.NewManager(s.baseURL, opts)
	io := manager.Socket(s.namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("socket.io connection to %s did not complete: %w", s.baseURL, ctx.Err())
	}
}
