package quadbench

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans emitted by this package.
const InstrumentationName = "github.com/alexshd/quadbench"

// tracer resolves through the global provider on every call so a provider
// installed after package init is still honoured. Without one, spans are no-ops.
func tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
