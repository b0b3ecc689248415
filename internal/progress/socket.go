package progress

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vk/pipegraph/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketConfig describes the socket.io endpoint progress is pushed to.
type SocketConfig struct {
	URL                string
	Namespace          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// SocketObserver emits "progress" and "finished" events to a socket.io
// namespace. Every run gets a fresh run_id so listeners can tell runs apart.
type SocketObserver struct {
	io     *socket.Socket
	logger *slog.Logger

	mu    sync.Mutex
	runID string
}

// DialSocket connects to the endpoint and waits for the namespace to accept
// the connection.
func DialSocket(ctx context.Context, cfg SocketConfig) (*SocketObserver, error) {
	logger := ctxlog.FromContext(ctx).With("observer", "socketio", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("progress URL %q must include a scheme and host", cfg.URL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	connected := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Progress socket connected.", "namespace", namespace, "sid", io.Id())
		select {
		case connected <- nil:
		default:
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connected <- err:
		default:
		}
	})
	io.Connect()

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("progress socket: %w", err)
		}
	case <-dialCtx.Done():
		io.Disconnect()
		return nil, errors.New("timed out while waiting for progress socket connection")
	}

	return &SocketObserver{io: io, logger: logger}, nil
}

func (o *SocketObserver) currentRun() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	return o.runID
}

func (o *SocketObserver) Progress(current, total int, label string) {
	o.io.Emit("progress", map[string]any{
		"run_id":  o.currentRun(),
		"current": current,
		"total":   total,
		"label":   label,
	})
}

func (o *SocketObserver) Finished(err error) {
	payload := map[string]any{"run_id": o.currentRun(), "ok": err == nil}
	if err != nil {
		payload["error"] = err.Error()
	}
	o.io.Emit("finished", payload)
	o.logger.Debug("Run result pushed.", "run_id", payload["run_id"])

	o.mu.Lock()
	o.runID = ""
	o.mu.Unlock()
}

// Close disconnects from the namespace.
func (o *SocketObserver) Close() {
	o.io.Disconnect()
}
