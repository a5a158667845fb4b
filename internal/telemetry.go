package internal

import (
	"context"
	"sync"
)

// telemetry.go
// Lightweight telemetry hook layer used by serialization and the database
// adapters. By default the emitter is a no-op; service wiring may register an
// OpenTelemetry-backed emitter (or a test stub) via RegisterTelemetryEmitter.

type telemetryEmitter func(ctx context.Context, name string, labels map[string]string, value any)

var (
	teleMu   sync.Mutex
	teleImpl telemetryEmitter = func(ctx context.Context, name string, labels map[string]string, value any) {}
)

// RegisterTelemetryEmitter registers a custom emitter function. nil restores
// the no-op emitter.
func RegisterTelemetryEmitter(fn telemetryEmitter) {
	teleMu.Lock()
	defer teleMu.Unlock()
	if fn == nil {
		teleImpl = func(ctx context.Context, name string, labels map[string]string, value any) {}
		return
	}
	teleImpl = fn
}

func emitter() telemetryEmitter {
	teleMu.Lock()
	defer teleMu.Unlock()
	return teleImpl
}

// EmitFetchLatency records how long one instance fetch took (milliseconds).
// name: "eureka_fetch_latency_ms" with labels {"source": "memory|pgx|sql", "type": "<schema>"}
func EmitFetchLatency(ctx context.Context, source, typeName string, ms int64) {
	emitter()(ctx, "eureka_fetch_latency_ms", map[string]string{"source": source, "type": typeName}, ms)
}

// EmitIncludedCount records the size of a compound document's included set.
// name: "eureka_included_count"
func EmitIncludedCount(ctx context.Context, count int) {
	emitter()(ctx, "eureka_included_count", map[string]string{}, int64(count))
}

// EmitValidationFailures records the number of failed constraints of a
// validation run.
// name: "eureka_validation_failures" with label {"schema": "<schema>"}
func EmitValidationFailures(ctx context.Context, schema string, failures int) {
	emitter()(ctx, "eureka_validation_failures", map[string]string{"schema": schema}, int64(failures))
}
