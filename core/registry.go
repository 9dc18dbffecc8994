package core

import "sync"

// ── Registry ──────────────────────────────────────────────────────────────────

// DefaultRegistry is a thread-safe implementation of Registry keyed by
// container.
type DefaultRegistry struct {
	mu       sync.RWMutex
	decoders map[Container]Decoder
	encoders map[Container]Encoder
}

// NewRegistry returns an empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		decoders: make(map[Container]Decoder),
		encoders: make(map[Container]Encoder),
	}
}

func (r *DefaultRegistry) RegisterDecoder(c Container, d Decoder) {
	r.mu.Lock()
	r.decoders[c] = d
	r.mu.Unlock()
}

func (r *DefaultRegistry) RegisterEncoder(c Container, e Encoder) {
	r.mu.Lock()
	r.encoders[c] = e
	r.mu.Unlock()
}

func (r *DefaultRegistry) DecoderFor(c Container) (Decoder, bool) {
	r.mu.RLock()
	d, ok := r.decoders[c]
	r.mu.RUnlock()
	return d, ok
}

func (r *DefaultRegistry) EncoderFor(c Container) (Encoder, bool) {
	r.mu.RLock()
	e, ok := r.encoders[c]
	r.mu.RUnlock()
	return e, ok
}
