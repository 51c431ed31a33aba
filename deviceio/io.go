package deviceio

import (
	"fmt"

	"github.com/openastro/go-deviceio/internal/pool"
)

// ReadFull reads exactly len(buf) bytes from the handle.
//
// The underlying read is repeated until the buffer is full or a terminal
// stream error occurs. Bare timeouts — a socket deadline expiry or a
// serial read window elapsing with nothing available — are transparent:
// the call pauses briefly and retries, without bound. The returned count
// is the total accumulated, equal to len(buf) unless an error is
// returned alongside the bytes read so far.
func (c *Conn) ReadFull(buf []byte) (int, error) {
	total := 0

	for total < len(buf) {
		n, err := c.readChunk(buf[total:])
		total += n

		if err != nil {
			if isTimeoutErr(err) {
				if n == 0 {
					pool.Sleep(c.retryPause)
				}

				continue
			}

			return total, err
		}

		if n == 0 {
			// Serial read window elapsed with nothing available.
			pool.Sleep(c.retryPause)
		}
	}

	return total, nil
}

// ReadLine reads one text line of at most max bytes from the handle.
//
// Bytes are consumed one at a time. Carriage returns are discarded,
// a line feed terminates the line (and is not included), and a line
// reaching max bytes without a terminator is returned as-is. An empty
// line is a successful result.
//
// Unlike ReadFull, ReadLine does not retry timeouts: a line read is
// expected to produce data, so a byte read that yields nothing within
// the handle timeout fails the call the same way a stream error or
// end-of-stream does — ErrConnectionReset, no partial line. Every
// completed line is reported to the trace sink tagged with the handle
// identity.
func (c *Conn) ReadLine(max int) (string, error) {
	line := make([]byte, 0, min(max, MaxFormatLen))

	var b [1]byte
	for len(line) < max {
		n, err := c.readChunk(b[:])
		if err != nil {
			c.trace("%d → ERROR", c.id)

			return "", fmt.Errorf("%w: %w", ErrConnectionReset, err)
		}

		if n == 0 {
			// Serial read window elapsed with no data mid-line.
			c.trace("%d → ERROR", c.id)

			return "", fmt.Errorf("%w: no data within read timeout", ErrConnectionReset)
		}

		switch b[0] {
		case '\r':
			// Discarded, not counted against max.
		case '\n':
			c.trace("%d → %s", c.id, line)

			return string(line), nil
		default:
			line = append(line, b[0])
		}
	}

	c.trace("%d → %s", c.id, line)

	return string(line), nil
}

// Write writes all of data to the handle.
//
// The underlying write is repeated until every byte is confirmed
// written; the first write failure (including a send timeout) fails the
// whole call. There is no partial-success return.
func (c *Conn) Write(data []byte) error {
	for written := 0; written < len(data); {
		n, err := c.writeChunk(data[written:])
		written += n

		if err != nil {
			return fmt.Errorf("deviceio: write: %w", err)
		}
	}

	return nil
}

// Printf formats its arguments and writes the result to the handle.
//
// The formatted content is capped at MaxFormatLen bytes; anything beyond
// the cap is truncated and sent, never reported as an error. The content
// is reported to the trace sink before transmission.
func (c *Conn) Printf(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if len(text) > MaxFormatLen {
		text = text[:MaxFormatLen]
	}

	c.trace("%d ← %s", c.id, text)

	return c.Write([]byte(text))
}

// Scanf reads one line from the handle and parses it against format,
// returning the number of fields successfully parsed.
//
// If the line read itself fails — including an idle link producing no
// line within the handle timeout — Scanf returns (0, err). A line that
// was read but is empty or matches no fields returns (0, nil); the two
// outcomes are deliberately distinct.
func (c *Conn) Scanf(format string, args ...any) (int, error) {
	line, err := c.ReadLine(MaxFormatLen)
	if err != nil {
		return 0, err
	}

	// Sscanf reports an error for fewer fields than the format names;
	// only the parsed count matters here.
	n, _ := fmt.Sscanf(line, format, args...)

	return n, nil
}

// trace formats and delivers one directional trace entry.
func (c *Conn) trace(format string, args ...any) {
	if c.tracer == nil {
		return
	}

	c.tracer.Trace(fmt.Sprintf(format, args...))
}
