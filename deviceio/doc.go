// Package deviceio provides the uniform byte-stream transport used by
// device drivers that speak line- or packet-oriented protocols over
// serial ports, TCP, or UDP.
//
// A handle is opened with one of the Open functions and then drives a
// strictly synchronous, blocking API:
//
//	c, err := deviceio.OpenSerialWithConfig("/dev/ttyUSB0", "115200-8N1")
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	if err := c.Printf("GET_TEMP\n"); err != nil {
//		return err
//	}
//	var temp float64
//	if _, err := c.Scanf("%f", &temp); err != nil {
//		return err
//	}
//
// # Blocking semantics
//
// ReadFull and Write repeat the underlying primitive until the full
// requested length is satisfied, so callers observe "complete or failed"
// rather than partial transfers. For ReadFull, bare timeouts are retry
// signals, not errors: the fixed handle timeout (set at open, 5 s by
// default) bounds each underlying call, and the loop pauses briefly and
// tries again until real data or a real error arrives. ReadLine and
// Scanf are stricter — a line read that produces nothing within the
// timeout window fails with ErrConnectionReset, so a polling driver
// gets a timely error from a silent peer instead of blocking forever.
//
// # Concurrency
//
// The package holds no global mutable state. Distinct handles are safe
// to use concurrently from distinct goroutines; access to a single
// handle must be serialized by its owner, typically with the driver's
// own mutex. There is no cancellation at this layer: a blocked call
// returns only through data, a terminal stream error, or the peer going
// away. Closing a handle out from under a blocked call is a caller
// hazard with undefined behavior.
//
// # Observability
//
// Completed received lines and sent payloads are reported to an injected
// trace sink tagged with the handle identity and a direction marker (see
// Tracer). Open and configuration failures are reported to the injected
// logger. Neither sink affects I/O results.
package deviceio
