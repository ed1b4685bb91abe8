package mjolnir

import "errors"

// Error kinds from §7 of the spec. CapacityExhausted and
// DeviceAllocationFailed are returned as errors; InvalidHandle and NotFound
// are represented as a plain ok/found bool, per the "not logged, caller
// decides policy" propagation rule — they never appear here as an error
// value.
var (
	// ErrCapacityExhausted is returned when a pool or slab class is full.
	ErrCapacityExhausted = errors.New("mjolnir: capacity exhausted")
	// ErrDeviceAllocationFailed wraps a failure from the underlying GPU
	// context (buffer/image/sampler/descriptor creation).
	ErrDeviceAllocationFailed = errors.New("mjolnir: device allocation failed")
)
