package ply

import "log/slog"

// DefaultMaxListCount rejects list counts that only a corrupt file would
// carry, before any memory is reserved for them.
const DefaultMaxListCount = 1 << 24

type Options struct {
	// MaxListCount is the largest list count the decoder accepts.
	MaxListCount int
	// MaxElementCount, when positive, is the largest instance count a
	// header may declare for one element. Zero leaves it unbounded.
	MaxElementCount int
	// Conversion applies to decoded values converted into a destination
	// type and, on the write side, to values converted into the declared
	// file type.
	Conversion Conversion
	// Strict makes the encoder reject non-finite floats and any value that
	// does not convert exactly into its declared file type.
	Strict bool
	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{MaxListCount: DefaultMaxListCount}
}

func (o Options) withDefaults() Options {
	if o.MaxElementCount < 0 {
		o.MaxElementCount = 0
	}
	if o.MaxListCount <= 0 {
		o.MaxListCount = DefaultMaxListCount
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}
