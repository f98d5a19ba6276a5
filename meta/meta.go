// Package meta carries per-operation metadata through context.
//
// The transfer layer injects a trace id, the operation name and the file being
// moved; the logger picks them up in WithContext so every line of one
// transfer can be correlated.
package meta

import "context"

// ContextKey is a type for keys used in context values for metadata.
type ContextKey string

const (
	// TraceID correlates all log lines and spans of one transfer.
	TraceID ContextKey = "trace_id"

	// Operation is the transfer being performed, e.g. "save" or "fetch".
	Operation ContextKey = "operation"

	// FileName is the name of the file being transferred.
	FileName ContextKey = "file_name"

	// Backend identifies the backend serving the transfer.
	Backend ContextKey = "backend"

	// ServiceName identifies the application embedding the client.
	ServiceName ContextKey = "service_name"
)

//nolint:gochecknoglobals // fixed extraction order
var knownKeys = []ContextKey{
	TraceID,
	Operation,
	FileName,
	Backend,
	ServiceName,
}

// InjectMetaToContext adds metadata from the provided map to the context.
// Empty values are skipped.
func InjectMetaToContext(ctx context.Context, data map[ContextKey]string) context.Context {
	for k, v := range data {
		if v != "" {
			ctx = context.WithValue(ctx, k, v) //nolint:fatcontext // finite number of keys
		}
	}
	return ctx
}

// ExtractMetaFromContext returns all known, non-empty metadata values from ctx.
func ExtractMetaFromContext(ctx context.Context) map[ContextKey]string {
	data := make(map[ContextKey]string)
	for _, k := range knownKeys {
		if v, ok := ctx.Value(k).(string); ok && v != "" {
			data[k] = v
		}
	}
	return data
}

// Find returns the value stored under key, or "".
func Find(ctx context.Context, key ContextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}
