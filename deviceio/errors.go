package deviceio

import "errors"

// Sentinel errors for the transport layer. All failures returned by the
// open functions and I/O primitives wrap one of these and are matchable
// with errors.Is.
var (
	// ErrInvalidConfig indicates a malformed or unsupported configuration
	// value (serial mode string, port number). It is always detected
	// before any I/O takes place.
	ErrInvalidConfig = errors.New("deviceio: invalid configuration")

	// ErrOpen indicates that the underlying open, connect, or device
	// configuration failed. Any partially opened resource has been
	// released before the error is returned.
	ErrOpen = errors.New("deviceio: open failed")

	// ErrResolution indicates that a hostname could not be resolved.
	ErrResolution = errors.New("deviceio: host resolution failed")

	// ErrSocketOption indicates that the socket timeout could not be
	// configured after connect. The socket has been closed before the
	// error is returned.
	ErrSocketOption = errors.New("deviceio: socket timeout configuration failed")

	// ErrConnectionReset indicates that a read which should have produced
	// data observed end-of-stream or a stream error mid-operation.
	ErrConnectionReset = errors.New("deviceio: connection reset")

	// ErrClosed indicates an operation on a closed or never-opened handle.
	ErrClosed = errors.New("deviceio: handle closed")
)
