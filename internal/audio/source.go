// SPDX-License-Identifier: MIT
/*
Package audio provides the sample sources that feed the feature extractor:
- PortAudio capture from an input device
- WAV file replay paced at the file's sample rate
- A synthetic music-like signal for running without hardware

Every source delivers mono float64 batches in [-1, 1] to an IngestFunc
from its own goroutine until the context is cancelled.
*/
package audio

import (
	"context"
	"time"
)

// IngestFunc receives one batch of mono samples. The slice is reused by
// the source after the call returns.
type IngestFunc func(samples []float64)

// Source streams samples until ctx is cancelled or the input ends.
type Source interface {
	Stream(ctx context.Context, ingest IngestFunc) error
	SampleRate() float64
}

// batchPeriod is the wall time covered by n samples at rate.
func batchPeriod(n int, rate float64) time.Duration {
	return time.Duration(float64(n) / rate * float64(time.Second))
}
