package log

import "go.uber.org/zap"

// field constructors, re-exported so callers don't need to import zap
var (
	Any        = zap.Any
	Bool       = zap.Bool
	String     = zap.String
	Strings    = zap.Strings
	Int        = zap.Int
	Int32      = zap.Int32
	Int64      = zap.Int64
	Uint       = zap.Uint
	Uint32     = zap.Uint32
	Uint64     = zap.Uint64
	Float32    = zap.Float32
	Float32s   = zap.Float32s
	Float64    = zap.Float64
	Time       = zap.Time
	Duration   = zap.Duration
	Stringer   = zap.Stringer
	ErrorField = zap.Error
)
