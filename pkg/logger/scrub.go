package logger

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redacted = "[REDACTED]"

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// sensitiveKeys covers raw user_data names, their provider aliases and
// credentials. Matching is case-insensitive.
var sensitiveKeys = map[string]struct{}{
	"email": {}, "em": {},
	"phone": {}, "ph": {},
	"first_name": {}, "fn": {},
	"last_name": {}, "ln": {},
	"gender": {}, "ge": {},
	"date_of_birth": {}, "db": {},
	"city": {}, "ct": {},
	"state": {}, "st": {},
	"zip": {}, "zp": {},
	"country":       {},
	"external_id":   {},
	"user_data":     {},
	"access_token":  {},
	"token":         {},
	"authorization": {},

	"x-meta-access-token": {},
}

type scrubCore struct {
	zapcore.Core
}

// NewScrubCore wraps c so that values under sensitive keys are replaced and
// email addresses are masked in messages and string fields.
func NewScrubCore(c zapcore.Core) zapcore.Core {
	return &scrubCore{Core: c}
}

func (s *scrubCore) With(fields []zapcore.Field) zapcore.Core {
	return &scrubCore{Core: s.Core.With(scrubFields(fields))}
}

func (s *scrubCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if s.Enabled(ent.Level) {
		return ce.AddCore(ent, s)
	}
	return ce
}

func (s *scrubCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = scrubString(ent.Message)
	return s.Core.Write(ent, scrubFields(fields))
}

func scrubFields(fields []zapcore.Field) []zapcore.Field {
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		out[i] = scrubField(f)
	}
	return out
}

func scrubField(f zapcore.Field) zapcore.Field {
	if _, ok := sensitiveKeys[strings.ToLower(f.Key)]; ok {
		return zap.String(f.Key, redacted)
	}

	switch f.Type {
	case zapcore.StringType:
		f.String = scrubString(f.String)
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok && err != nil {
			return zap.String(f.Key, scrubString(err.Error()))
		}
	case zapcore.StringerType:
		if st, ok := f.Interface.(interface{ String() string }); ok && st != nil {
			return zap.String(f.Key, scrubString(st.String()))
		}
	}
	return f
}

func scrubString(s string) string {
	if !strings.Contains(s, "@") {
		return s
	}
	return emailPattern.ReplaceAllString(s, redacted)
}
