package api

import (
	"bytes"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Host log levels as passed to ext_logging_log_version_1.
const (
	HostLevelError uint32 = 1
	HostLevelWarn  uint32 = 2
	HostLevelInfo  uint32 = 3
	HostLevelDebug uint32 = 4
	HostLevelTrace uint32 = 5
)

// DefaultLogTarget is used for entries from unnamed loggers.
const DefaultLogTarget = "runtime"

// LogFunc delivers one encoded entry to the host. It must not retain
// target or message.
type LogFunc func(level uint32, target, message []byte)

// HostLevel maps a zap level to a host log level.
func HostLevel(l zapcore.Level) uint32 {
	switch {
	case l >= zapcore.ErrorLevel:
		return HostLevelError
	case l == zapcore.WarnLevel:
		return HostLevelWarn
	case l == zapcore.InfoLevel:
		return HostLevelInfo
	default:
		return HostLevelDebug
	}
}

// ZapLevel maps a host log level to a zap level. Trace maps to debug.
func ZapLevel(level uint32) zapcore.Level {
	switch level {
	case HostLevelError:
		return zapcore.ErrorLevel
	case HostLevelWarn:
		return zapcore.WarnLevel
	case HostLevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// HostLogSink is a zap core that forwards entries to the host. The host
// adds time and level, so only the message and fields are encoded.
type HostLogSink struct {
	zapcore.LevelEnabler
	enc zapcore.Encoder
	out LogFunc
}

// NewHostLogSink creates a core writing through out.
func NewHostLogSink(out LogFunc, enab zapcore.LevelEnabler) *HostLogSink {
	return &HostLogSink{
		LevelEnabler: enab,
		enc: zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			MessageKey:     "msg",
			EncodeDuration: zapcore.StringDurationEncoder,
		}),
		out: out,
	}
}

// NewHostLogger returns a logger over a HostLogSink.
func NewHostLogger(out LogFunc, enab zapcore.LevelEnabler) *zap.Logger {
	return zap.New(NewHostLogSink(out, enab))
}

func (s *HostLogSink) With(fields []zapcore.Field) zapcore.Core {
	enc := s.enc.Clone()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return &HostLogSink{LevelEnabler: s.LevelEnabler, enc: enc, out: s.out}
}

func (s *HostLogSink) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if s.Enabled(ent.Level) {
		return ce.AddCore(ent, s)
	}
	return ce
}

func (s *HostLogSink) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := s.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	target := ent.LoggerName
	if target == "" {
		target = DefaultLogTarget
	}
	s.out(HostLevel(ent.Level), []byte(target), bytes.TrimRight(buf.Bytes(), "\n"))
	return nil
}

func (s *HostLogSink) Sync() error {
	return nil
}
