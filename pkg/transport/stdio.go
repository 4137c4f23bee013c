package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	mcperrors "github.com/ajitpratap0/logic-gates-mcp/pkg/errors"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/logging"
)

// stdioDrainTimeout bounds how long Start waits for the input reader after
// shutdown has been requested
const stdioDrainTimeout = 250 * time.Millisecond

// StdioTransport implements Transport over newline-delimited JSON on
// standard input and output. Messages are processed one at a time in the
// order they arrive.
type StdioTransport struct {
	*BaseTransport
	reader         io.Reader
	writer         *bufio.Writer
	maxMessageSize int
	requestTimeout time.Duration
	mutex          sync.Mutex // guards writer
	done           chan struct{}
	stopOnce       sync.Once
}

// NewStdioTransport creates a stdio transport from config
func NewStdioTransport(config TransportConfig) *StdioTransport {
	reader := config.StdioReader
	writer := config.StdioWriter
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	maxSize := config.Performance.MaxMessageSize
	if maxSize <= 0 {
		maxSize = DefaultTransportConfig(TransportTypeStdio).Performance.MaxMessageSize
	}

	logger := config.Logger
	if logger != nil {
		logger = logger.WithFields(logging.String("component", "StdioTransport"))
	}

	return &StdioTransport{
		BaseTransport:  NewBaseTransport(logger),
		reader:         reader,
		writer:         bufio.NewWriter(writer),
		maxMessageSize: maxSize,
		requestTimeout: config.Performance.RequestTimeout,
		done:           make(chan struct{}),
	}
}

// Initialize is a no-op; stdin and stdout are already open
func (t *StdioTransport) Initialize(ctx context.Context) error {
	return nil
}

// Start reads messages until EOF, ctx cancellation or Stop. Each reply
// is written as a single line.
func (t *StdioTransport) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	scanner := bufio.NewScanner(t.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), t.maxMessageSize)

	g.Go(func() error {
		for scanner.Scan() {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-t.done:
				return nil
			default:
			}

			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			// Copy the line; the scanner reuses its buffer
			data := make([]byte, len(line))
			copy(data, line)

			if err := t.processMessage(gctx, data); err != nil {
				return err
			}
		}

		if err := scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				return mcperrors.MessageTooLarge("stdio", t.maxMessageSize)
			}
			select {
			case <-t.done:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return mcperrors.StdioTransportError("read_input", err).
				WithContext(&mcperrors.Context{
					Component: "StdioTransport",
					Operation: "scan_input",
				})
		}
		return nil
	})

	waitErr := make(chan error, 1)
	go func() {
		err := g.Wait()
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			err = nil
		}
		waitErr <- err
	}()

	select {
	case err := <-waitErr:
		return err
	case <-ctx.Done():
	case <-t.done:
	}

	// A read blocked on a terminal may survive Close, so the scanner gets
	// a bounded grace period and is then abandoned.
	t.closeReader()
	select {
	case <-waitErr:
	case <-time.After(stdioDrainTimeout):
		t.logger.Warn("Input reader still blocked after shutdown")
	}
	return nil
}

func (t *StdioTransport) closeReader() {
	if closer, ok := t.reader.(io.Closer); ok {
		_ = closer.Close()
	}
}

// Stop halts the transport and flushes pending output
func (t *StdioTransport) Stop(ctx context.Context) error {
	var flushErr error

	t.stopOnce.Do(func() {
		close(t.done)

		t.mutex.Lock()
		flushErr = t.writer.Flush()
		t.mutex.Unlock()
	})

	if flushErr != nil {
		return mcperrors.StdioTransportError("stop", flushErr).
			WithContext(&mcperrors.Context{
				Component: "StdioTransport",
				Operation: "flush_on_stop",
			})
	}
	return nil
}

// Send writes one message followed by a newline and flushes it
func (t *StdioTransport) Send(data []byte) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, err := t.writer.Write(data); err != nil {
		return mcperrors.StdioTransportError("send_message", err).
			WithContext(&mcperrors.Context{Component: "StdioTransport", Operation: "write_data"})
	}
	if err := t.writer.WriteByte('\n'); err != nil {
		return mcperrors.StdioTransportError("send_message", err).
			WithContext(&mcperrors.Context{Component: "StdioTransport", Operation: "write_newline"})
	}
	if err := t.writer.Flush(); err != nil {
		return mcperrors.StdioTransportError("send_message", err).
			WithContext(&mcperrors.Context{Component: "StdioTransport", Operation: "flush_output"})
	}
	return nil
}

// processMessage handles one line. Only write failures are returned;
// protocol errors are answered on the stream.
func (t *StdioTransport) processMessage(ctx context.Context, data []byte) error {
	if t.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.requestTimeout)
		defer cancel()
	}

	reply, err := func() (reply []byte, err error) {
		defer func() {
			if r := recover(); r != nil {
				t.logger.Error("Panic in message processing",
					logging.Any("panic", r),
					logging.String("stack", string(debug.Stack())),
				)
				reply, err = nil, nil
			}
		}()
		return t.HandleMessage(ctx, data)
	}()
	if err != nil {
		t.logger.WithError(err).Error("Failed to encode reply")
		return nil
	}
	if reply == nil {
		return nil
	}
	return t.Send(reply)
}
