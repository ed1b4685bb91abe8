package mjolnir

import "github.com/mjolnir-engine/mjolnir/pool"

// Handle identifies a slot in one of the Manager's pools: a mesh,
// material, texture, camera, light, sprite, emitter, force field, or
// clip. It is a thin alias over pool.Handle so external callers never
// need to import the pool package directly.
type Handle = pool.Handle

// NullHandle is the zero Handle: generation 0, never valid against any
// pool.
var NullHandle = Handle{}
