// internal/logging/redact.go
package logging

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	redacted        = "[REDACTED]"
	redactedPattern = "[REDACTED:pattern]"
)

// RedactedString creates a Zap field with redacted value and length.
func RedactedString(key, val string) zap.Field {
	return zap.String(key, "[REDACTED:"+strconv.Itoa(len(val))+"]")
}

// RedactingEncoder wraps a zapcore.Encoder to redact sensitive fields.
//
// Fields attached with Logger.With pass through the Add* methods, fields
// passed at the call site pass through EncodeEntry. Both are redacted.
type RedactingEncoder struct {
	zapcore.Encoder
	redactFields map[string]bool
	redactRegex  []*regexp.Regexp
}

// NewRedactingEncoder wraps an encoder with redaction rules.
// Returns error if any redaction pattern fails to compile.
func NewRedactingEncoder(base zapcore.Encoder, cfg RedactionConfig) (*RedactingEncoder, error) {
	if !cfg.Enabled {
		return &RedactingEncoder{Encoder: base}, nil
	}

	fields := make(map[string]bool)
	for _, f := range cfg.Fields {
		fields[strings.ToLower(f)] = true
	}

	var patterns []*regexp.Regexp
	for _, p := range cfg.Patterns {
		if len(p) > 200 {
			return nil, fmt.Errorf("redaction pattern too long (max 200 chars): %q", p)
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	return &RedactingEncoder{
		Encoder:      base,
		redactFields: fields,
		redactRegex:  patterns,
	}, nil
}

func (e *RedactingEncoder) shouldRedactKey(key string) bool {
	return e.redactFields[strings.ToLower(key)]
}

func (e *RedactingEncoder) matchesPattern(val string) bool {
	for _, re := range e.redactRegex {
		if re.MatchString(val) {
			return true
		}
	}
	return false
}

// EncodeEntry redacts call-site fields before delegating to the wrapped encoder.
func (e *RedactingEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	if len(e.redactFields) == 0 && len(e.redactRegex) == 0 {
		return e.Encoder.EncodeEntry(ent, fields)
	}

	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		switch {
		case e.shouldRedactKey(f.Key):
			out[i] = zap.String(f.Key, redacted)
		case f.Type == zapcore.StringType && e.matchesPattern(f.String):
			out[i] = zap.String(f.Key, redactedPattern)
		default:
			out[i] = f
		}
	}
	return e.Encoder.EncodeEntry(ent, out)
}

// AddString redacts sensitive field names and value patterns.
func (e *RedactingEncoder) AddString(key, val string) {
	if e.shouldRedactKey(key) {
		e.Encoder.AddString(key, redacted)
		return
	}
	if e.matchesPattern(val) {
		e.Encoder.AddString(key, redactedPattern)
		return
	}
	e.Encoder.AddString(key, val)
}

// AddByteString redacts sensitive field names.
func (e *RedactingEncoder) AddByteString(key string, val []byte) {
	if e.shouldRedactKey(key) {
		e.Encoder.AddByteString(key, []byte(redacted))
		return
	}
	e.Encoder.AddByteString(key, val)
}

// AddReflected redacts the entire reflected value if the key is sensitive.
func (e *RedactingEncoder) AddReflected(key string, val interface{}) error {
	if e.shouldRedactKey(key) {
		e.Encoder.AddString(key, redacted)
		return nil
	}
	return e.Encoder.AddReflected(key, val)
}

// AddObject redacts sensitive field names.
func (e *RedactingEncoder) AddObject(key string, obj zapcore.ObjectMarshaler) error {
	if e.shouldRedactKey(key) {
		e.Encoder.AddString(key, redacted)
		return nil
	}
	return e.Encoder.AddObject(key, obj)
}

// Clone creates a copy of the encoder.
func (e *RedactingEncoder) Clone() zapcore.Encoder {
	return &RedactingEncoder{
		Encoder:      e.Encoder.Clone(),
		redactFields: e.redactFields,
		redactRegex:  e.redactRegex,
	}
}
