package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldRequestID = "request_id"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"

	// Bridge fields.
	FieldCommand = "command"
	FieldRID     = "rid"
	FieldMethod  = "method"
	FieldURL     = "url"
	FieldStatus  = "status"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Debug("fetch sent", logger.Fields(logger.FieldRID, rid, logger.FieldStatus, 200))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// CommandFields creates fields for a bridge command and the handle it targets.
// A zero rid is omitted since fetch has no handle yet.
func CommandFields(cmd string, rid uint32) map[string]interface{} {
	m := map[string]interface{}{FieldCommand: cmd}
	if rid != 0 {
		m[FieldRID] = rid
	}
	return m
}

// MergeWithDuration adds a duration field to an existing map.
func MergeWithDuration(fields map[string]interface{}, d time.Duration) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
