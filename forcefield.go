package mjolnir

import "github.com/go-gl/mathgl/mgl32"

// ForceFieldKind tags a ForceField's variant (spec §9 "tagged variants
// over inheritance").
type ForceFieldKind uint32

const (
	ForceFieldPoint ForceFieldKind = iota
	ForceFieldDirectional
	ForceFieldVortex
)

// ForceField perturbs particles within Radius of its owning node by
// Strength, in a manner determined by Kind. Like Emitter it is a scalar
// record with no owned GPU sub-allocation.
type ForceField struct {
	NodeIndex uint32
	Kind      ForceFieldKind
	Strength  float32
	Radius    float32
	Direction mgl32.Vec3 // meaningful only for ForceFieldDirectional
}

// BuildForceFieldData packs this force field into its fixed GPU record.
func (f *ForceField) BuildForceFieldData() ForceFieldData {
	return ForceFieldData{
		NodeIndex: f.NodeIndex,
		Kind:      uint32(f.Kind),
		Strength:  f.Strength,
		Radius:    f.Radius,
		Direction: f.Direction,
	}
}
