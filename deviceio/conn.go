package deviceio

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"go.bug.st/serial"

	"github.com/openastro/go-deviceio/logger"
)

// nextHandleID issues process-unique handle identities, used to tag
// protocol traces and diagnostics.
var nextHandleID atomic.Uint64

// Conn is an open byte-stream handle over a serial port or a TCP/UDP
// socket. It provides blocking read/write primitives with
// retry-until-complete semantics, plus line-oriented and formatted
// helpers for text protocols.
//
// A Conn holds no lock of its own. Distinct handles may be used
// concurrently from distinct goroutines without restriction; a single
// handle must be serialized externally by its owner. Closing a handle
// while another goroutine is blocked in a read or write on it has
// undefined behavior and is a caller hazard.
//
// The handle lifecycle is strictly open → closed: there is no
// reconnection and no backoff beyond the transparent timeout retry
// described on [Conn.ReadFull].
type Conn struct {
	id   uint64
	name string // device path or network address, for diagnostics

	// Exactly one of the two is set.
	netConn net.Conn
	port    serial.Port

	timeout    time.Duration
	retryPause time.Duration
	logger     logger.Logger
	tracer     Tracer

	closed atomic.Bool
}

func newConn(cfg *connConfig, name string) *Conn {
	return &Conn{
		id:         nextHandleID.Add(1),
		name:       name,
		timeout:    cfg.timeout,
		retryPause: cfg.retryPause,
		logger:     cfg.logger,
		tracer:     cfg.tracer,
	}
}

// OpenSerial opens the serial device at path with the default 9600-8N1
// configuration.
func OpenSerial(path string, opts ...Option) (*Conn, error) {
	return OpenSerialWithConfig(path, DefaultSerialConfig().String(), opts...)
}

// OpenSerialWithSpeed opens the serial device at path at the given baud
// rate with mode 8N1.
func OpenSerialWithSpeed(path string, baudRate int, opts ...Option) (*Conn, error) {
	return OpenSerialWithConfig(path, fmt.Sprintf("%d-8N1", baudRate), opts...)
}

// OpenSerialWithConfig opens the serial device at path with the given
// "<baud>-<databits><parity><stopbits>" configuration string.
//
// The configuration is validated before the device is touched; a
// malformed string returns ErrInvalidConfig with no side effects. The
// port is opened in raw mode with the configuration applied immediately,
// and its read timeout is set so an idle read returns after the handle
// timeout with nothing consumed. If the timeout cannot be applied the
// port is closed before the error is returned.
func OpenSerialWithConfig(path, config string, opts ...Option) (*Conn, error) {
	cfg, err := newConnConfig(opts)
	if err != nil {
		return nil, err
	}

	sc, err := ParseSerialConfig(config)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, sc.mode())
	if err != nil {
		cfg.logger.Error("deviceio: failed to open serial port",
			"path", path, "config", sc.String(), "error", err)

		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}

	if err := port.SetReadTimeout(cfg.timeout); err != nil {
		_ = port.Close()
		cfg.logger.Error("deviceio: failed to set serial read timeout",
			"path", path, "error", err)

		return nil, fmt.Errorf("%w: %s: set read timeout: %w", ErrOpen, path, err)
	}

	c := newConn(cfg, path)
	c.port = port

	cfg.logger.Debug("deviceio: serial port opened",
		"handle", c.id, "path", path, "config", sc.String())

	return c, nil
}

// OpenTCP opens a TCP connection to host:port.
func OpenTCP(host string, port int, opts ...Option) (*Conn, error) {
	return openNet("tcp", host, port, opts)
}

// OpenUDP opens a UDP socket connected to host:port. Connecting fixes
// the peer address without any handshake; datagrams to and from other
// peers are filtered by the kernel.
func OpenUDP(host string, port int, opts ...Option) (*Conn, error) {
	return openNet("udp", host, port, opts)
}

func openNet(network, host string, port int, opts []Option) (*Conn, error) {
	cfg, err := newConnConfig(opts)
	if err != nil {
		return nil, err
	}

	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range [0, 65535]", ErrInvalidConfig, port)
	}

	addrs, err := net.LookupHost(host)
	if err != nil {
		cfg.logger.Error("deviceio: failed to resolve host", "host", host, "error", err)

		return nil, fmt.Errorf("%w: %q: %w", ErrResolution, host, err)
	}

	addr := net.JoinHostPort(addrs[0], strconv.Itoa(port))

	conn, err := net.DialTimeout(network, addr, cfg.timeout)
	if err != nil {
		cfg.logger.Error("deviceio: failed to connect",
			"network", network, "addr", addr, "error", err)

		return nil, fmt.Errorf("%w: %s %s: %w", ErrOpen, network, addr, err)
	}

	// Apply the send/receive timeout once up front. The I/O primitives
	// re-arm it per call; probing here guarantees a handle that cannot
	// honor its timeout is never handed out.
	if err := conn.SetDeadline(time.Now().Add(cfg.timeout)); err != nil {
		_ = conn.Close()
		cfg.logger.Error("deviceio: failed to configure socket timeout",
			"network", network, "addr", addr, "error", err)

		return nil, fmt.Errorf("%w: %s %s: %w", ErrSocketOption, network, addr, err)
	}

	c := newConn(cfg, addr)
	c.netConn = conn

	cfg.logger.Debug("deviceio: connection opened",
		"handle", c.id, "network", network, "addr", addr)

	return c, nil
}

// ID returns the process-unique handle identity used in traces.
func (c *Conn) ID() uint64 { return c.id }

// Name returns the device path or network address the handle was opened
// against.
func (c *Conn) Name() string { return c.name }

// String implements fmt.Stringer for diagnostics.
func (c *Conn) String() string {
	return fmt.Sprintf("%s#%d", c.name, c.id)
}

// Close releases the underlying stream. It is idempotent and safe to
// call on a handle that was never opened successfully.
func (c *Conn) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	switch {
	case c.netConn != nil:
		return c.netConn.Close()
	case c.port != nil:
		return c.port.Close()
	default:
		return nil
	}
}

// readChunk performs one underlying read with the handle timeout armed.
//
// Socket reads report an expired deadline as a net.Error with
// Timeout() == true; serial reads report it as (0, nil). Both are
// classified as transient by the callers.
func (c *Conn) readChunk(buf []byte) (int, error) {
	switch {
	case c.netConn != nil:
		if err := c.netConn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}

		return c.netConn.Read(buf)

	case c.port != nil:
		return c.port.Read(buf)

	default:
		return 0, ErrClosed
	}
}

// writeChunk performs one underlying write with the handle timeout armed.
// Write timeouts are real failures, not transients.
func (c *Conn) writeChunk(data []byte) (int, error) {
	switch {
	case c.netConn != nil:
		if err := c.netConn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}

		return c.netConn.Write(data)

	case c.port != nil:
		return c.port.Write(data)

	default:
		return 0, ErrClosed
	}
}

// isTimeoutErr reports whether err is a bare deadline expiry.
func isTimeoutErr(err error) bool {
	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
