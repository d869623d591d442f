package segio

import (
	"context"
	"os"

	"github.com/spf13/afero"
)

// File adapters go through afero so callers can stream against any
// filesystem implementation, memory-backed ones included.

// OpenSource opens name on fs for reading.
func OpenSource(ctx context.Context, fs afero.Fs, name string) (Source, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, wrapIO("open "+name, err)
	}
	return NewSource(ctx, f), nil
}

// CreateSink creates (or truncates) name on fs for writing.
func CreateSink(ctx context.Context, fs afero.Fs, name string) (Sink, error) {
	f, err := fs.Create(name)
	if err != nil {
		return nil, wrapIO("create "+name, err)
	}
	return NewSink(ctx, f), nil
}

// AppendSink opens name on fs for appending, creating it when absent.
func AppendSink(ctx context.Context, fs afero.Fs, name string) (Sink, error) {
	f, err := fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, wrapIO("append "+name, err)
	}
	return NewSink(ctx, f), nil
}
