// Package capture defines the PCM capture source abstraction the session
// runtime drives. It is grounded on the audioio.Source interface from the
// go-reachy robot's audio package, generalized from a blocking Read/Stream
// contract to the spec's non-blocking Poll contract (the runtime never
// blocks waiting on a capture device) and from int16 samples to the
// pipeline's f32 working format.
package capture

import (
	"time"

	"github.com/flowalyzer/pronunciation/internal/types"
)

// Chunk is one batch of PCM audio delivered by a Source, already resampled
// and downmixed to the pipeline's mono working sample rate.
type Chunk struct {
	Samples    []float32
	CapturedAt time.Time
}

// Source is polymorphic over {LiveMicrophone, Mock} per spec.md §4.5/§9: the
// session runtime never calls an OS audio API directly.
type Source interface {
	// Start begins production at the given target sample rate/channel
	// count, resampling and downmixing internally if the device's native
	// format differs, and reports what it actually resolved to.
	Start(targetSampleRate, channels int) (types.DeviceInfo, error)
	// Poll returns chunks produced since the last call. It never blocks; a
	// nil, nil-error return means nothing new has arrived yet.
	Poll() ([]Chunk, error)
	// Stop halts production. Subsequent Poll calls return no chunks.
	Stop() error
}
