package state

import "github.com/ProtonMail/photon/imap/encoder"

// defaultBufferCapacity is the capacity requested from the allocator for every encode buffer.
const defaultBufferCapacity = 128

// Option represents a type that can be used to configure the machine.
type Option interface {
	config(*Machine)
}

// WithEncodingOptions sets the literal options used for commands. APPEND always uses synchronizing literals.
func WithEncodingOptions(options encoder.Options) Option {
	return &withEncodingOptions{options: options}
}

type withEncodingOptions struct {
	options encoder.Options
}

func (opt withEncodingOptions) config(m *Machine) {
	m.encodingOptions = opt.options.WithLoggingMode(false)
}

// WithAllocator sets the function providing the backing storage of encode buffers.
func WithAllocator(allocate func(capacity int) []byte) Option {
	return &withAllocator{allocate: allocate}
}

type withAllocator struct {
	allocate func(capacity int) []byte
}

func (opt withAllocator) config(m *Machine) {
	m.allocate = opt.allocate
}

func defaultAllocator(capacity int) []byte {
	return make([]byte, 0, capacity)
}
