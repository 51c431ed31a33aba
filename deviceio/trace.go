package deviceio

import "github.com/openastro/go-deviceio/logger"

// Tracer receives directional protocol traces, one formatted string per
// completed line or sent payload:
//
//	"<handle> → <text>"   received
//	"<handle> ← <text>"   sent
//
// Tracing is an observability side effect; it never influences the
// return value of an I/O call. The sink is an injected collaborator and
// must tolerate concurrent calls from distinct handles.
type Tracer interface {
	Trace(text string)
}

// TracerFunc adapts a plain function to the Tracer interface.
type TracerFunc func(text string)

func (f TracerFunc) Trace(text string) { f(text) }

// loggerTracer is the default sink: traces go to the handle's logger at
// debug level.
type loggerTracer struct {
	l logger.Logger
}

func (t loggerTracer) Trace(text string) {
	t.l.Debug(text)
}
