package mjolnir

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestBuildForceFieldDataPacksKindAndDirection(t *testing.T) {
	f := &ForceField{
		NodeIndex: 2,
		Kind:      ForceFieldVortex,
		Strength:  3.5,
		Radius:    10,
		Direction: mgl32.Vec3{0, 1, 0},
	}
	data := f.BuildForceFieldData()
	assert.Equal(t, uint32(2), data.NodeIndex)
	assert.Equal(t, uint32(ForceFieldVortex), data.Kind)
	assert.Equal(t, float32(3.5), data.Strength)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, data.Direction)
}
