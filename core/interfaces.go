package core

import (
	"context"
	"io"
)

// Decoder converts a container stream into a canonical Image.
// Implementations live in adapters/decoder/.
type Decoder interface {
	// Decode reads from r and returns a decoded Image.
	Decode(ctx context.Context, r io.Reader) (*Image, error)
	// CanDecode reports whether this decoder handles the given container.
	CanDecode(c Container) bool
}

// Encoder serialises a canonical RGB24 Image into a container.
// Implementations live in adapters/encoder/.
type Encoder interface {
	Encode(ctx context.Context, img *Image) ([]byte, error)
	CanEncode(c Container) bool
}

// StorageAdapter persists generated files and retrieves inputs.
// Implementations live in adapters/storage/.
type StorageAdapter interface {
	Put(ctx context.Context, key StorageKey, r io.Reader) error
	Get(ctx context.Context, key StorageKey) (io.ReadCloser, error)
	Delete(ctx context.Context, key StorageKey) error
	Exists(ctx context.Context, key StorageKey) (bool, error)
}

// MetricsCollector receives performance observations from the pipeline.
type MetricsCollector interface {
	RecordProcessingTime(stepName string, d interface{ Seconds() float64 })
	RecordThroughput(bytes int64)
	RecordMemory(bytes int64)
	RecordError(stepName string, category string)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Registry maps containers to Decoder/Encoder implementations.
type Registry interface {
	DecoderFor(c Container) (Decoder, bool)
	EncoderFor(c Container) (Encoder, bool)
	RegisterDecoder(c Container, d Decoder)
	RegisterEncoder(c Container, e Encoder)
}
