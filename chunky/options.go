package chunky

// DefaultChunkSize is the edge length of a Full resolution chunk.
const DefaultChunkSize = 256

// Option configures an Image during creation.
//
// Example:
//
//	img := chunky.New(image.Pt(64, 64), chunky.WithChunkSize(16))
type Option func(*options)

type options struct {
	chunkSize int
	pool      *Pool
}

func defaultOptions() options {
	return options{
		chunkSize: DefaultChunkSize,
		pool:      defaultPool,
	}
}

// WithChunkSize sets the Full resolution chunk edge length. Values that are
// not positive are ignored.
func WithChunkSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.chunkSize = size
		}
	}
}

// WithPool sets the pool chunk surfaces are taken from.
// A nil pool keeps the default.
func WithPool(p *Pool) Option {
	return func(o *options) {
		if p != nil {
			o.pool = p
		}
	}
}

// ChunkSizeOf returns the chunk size an Image created with opts would use.
func ChunkSizeOf(opts ...Option) int {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o.chunkSize
}
