package yeelight

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultReadTimeout = 1000 * time.Millisecond
	DefaultDialTimeout = 3 * time.Second
	DefaultParallelism = 16
)

var (
	// ErrUnreachable is matched by errors from Send when no connection to the
	// bulb could be opened.
	ErrUnreachable = errors.New("device unreachable")
	// ErrTransport is matched by errors from Send when the connection was
	// opened but writing or reading failed.
	ErrTransport = errors.New("transport failure")
)

// TransportError describes a failed exchange with a bulb.
type TransportError struct {
	Op   string // "dial", "write" or "read"
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrUnreachable:
		return e.Op == "dial"
	case ErrTransport:
		return e.Op != "dial"
	}
	return false
}

// Exchange is handed to the observer after every Send.
type Exchange struct {
	Device   Device
	Command  Command
	Reply    string
	Received bool
	Err      error
	Elapsed  time.Duration
}

// Transport sends commands to bulbs, one TCP connection per command. A
// Transport is safe for concurrent use; calls share nothing but counters.
type Transport struct {
	readTimeout time.Duration
	dialTimeout time.Duration
	parallelism int
	observer    func(Exchange)
	stats       *stats
}

type TransportOption func(*Transport)

// WithReadTimeout bounds the wait for a reply line.
func WithReadTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		t.readTimeout = d
	}
}

// WithDialTimeout bounds the wait for the connection to be established.
func WithDialTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		t.dialTimeout = d
	}
}

// WithParallelism caps the number of simultaneous exchanges in Broadcast.
func WithParallelism(n int) TransportOption {
	return func(t *Transport) {
		t.parallelism = n
	}
}

// WithExchangeObserver registers f to be called after every Send. f runs on
// the sending goroutine and must not block.
func WithExchangeObserver(f func(Exchange)) TransportOption {
	return func(t *Transport) {
		t.observer = f
	}
}

func NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{
		readTimeout: DefaultReadTimeout,
		dialTimeout: DefaultDialTimeout,
		parallelism: DefaultParallelism,
		stats:       &stats{},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.parallelism < 1 {
		t.parallelism = 1
	}
	return t
}

// Send writes cmd to device and waits for one reply line.
//
// ok is false when the bulb did not answer within the read timeout; that is
// not an error, as bulbs often stay silent. A bulb that cannot be reached
// yields an error matching ErrUnreachable; a failure after connecting yields
// one matching ErrTransport.
func (t *Transport) Send(ctx context.Context, device Device, cmd Command) (reply string, ok bool, err error) {
	start := time.Now()
	defer func() {
		t.stats.record(ok, err)
		if t.observer != nil {
			t.observer(Exchange{
				Device:   device,
				Command:  cmd,
				Reply:    reply,
				Received: ok,
				Err:      err,
				Elapsed:  time.Since(start),
			})
		}
	}()

	return t.exchange(ctx, device, cmd)
}

func (t *Transport) exchange(ctx context.Context, device Device, cmd Command) (string, bool, error) {
	addr := device.Address()

	dialer := net.Dialer{Timeout: t.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		return "", false, &TransportError{Op: "dial", Addr: addr, Err: err}
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(t.readTimeout))

	// Cancelling ctx unblocks any pending write or read. Registered after the
	// read deadline so that it cannot be overwritten by it.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	wire := cmd.Wire()
	log.Debug().Str("device", device.ID).Msgf("--> %s", wire[:len(wire)-len(lineTerminator)])

	if _, err := conn.Write(wire); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		return "", false, &TransportError{Op: "write", Addr: addr, Err: err}
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	line = strings.TrimRight(line, lineTerminator)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		var netErr net.Error
		switch {
		case errors.As(err, &netErr) && netErr.Timeout():
			log.Debug().Str("device", device.ID).Msgf("<-- no reply within %s", t.readTimeout)
			return "", false, nil
		case errors.Is(err, io.EOF):
			// Closed by the bulb; whatever arrived before is the reply.
			if line == "" {
				return "", false, nil
			}
		default:
			return "", false, &TransportError{Op: "read", Addr: addr, Err: err}
		}
	}

	log.Debug().Str("device", device.ID).Msgf("<-- %s", line)
	return line, true, nil
}

// Stats returns the counters accumulated by t so far.
func (t *Transport) Stats() Stats {
	return t.stats.snapshot()
}
