package graphstore

import (
	"strings"

	"github.com/workgraph/engine/internal/value"
)

// RedactionSentinel replaces any property value whose key matches the PII
// set before it is persisted or written to the WAL (§3 invariant iii).
const RedactionSentinel = "***REDACTED***"

// TruncationMarker is appended to string values longer than maxStringLen
// (§3 invariant iv); the original value is never retained.
const TruncationMarker = "...[truncated]"

const maxStringLen = 1000

// piiKeys is the case-insensitive substring set that marks a property key
// as carrying personally identifiable information.
var piiKeys = []string{"email", "phone", "ssn", "password", "token", "key", "api_key"}

func isPIIKey(key string) bool {
	lower := strings.ToLower(key)
	for _, needle := range piiKeys {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}

// Sanitize walks props, redacting PII-keyed values and truncating
// over-long strings. It is applied identically before an in-memory upsert
// and before the same mutation is appended to the write-ahead log, so
// redaction is total (§4.1 Sanitization).
func Sanitize(props value.Props) value.Props {
	out := make(value.Props, len(props))
	for k, v := range props {
		if isPIIKey(k) {
			out[k] = value.String(RedactionSentinel)
			continue
		}
		out[k] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v value.Value) value.Value {
	if list, ok := v.List(); ok {
		items := make([]value.Value, len(list))
		for i, e := range list {
			items[i] = sanitizeValue(e)
		}
		return value.List(items...)
	}
	if m, ok := v.Map(); ok {
		return value.Map(Sanitize(value.Props(m)))
	}
	if _, ok := v.Number(); ok {
		return v
	}
	if _, ok := v.Bool(); ok {
		return v
	}
	if v.IsNull() {
		return v
	}
	if s := v.String(); len(s) > maxStringLen {
		return value.String(s[:maxStringLen] + TruncationMarker)
	}
	return v
}
