package renderer

import (
	"encoding/binary"
	"math"

	"github.com/vectra-gfx/vectra/common"
)

// sceneVertexStride is the byte size of one scene vertex: position vec2 plus
// color vec4, all float32.
const sceneVertexStride = 24

// groundVertexStride is the byte size of one ground vertex: position vec2.
const groundVertexStride = 8

// groundUniformSize is the byte size of the ground uniform block: a mat4x4
// transform followed by a vec4 color.
const groundUniformSize = 80

// viewportUniformSize is the byte size of the scene uniform block: the
// viewport size vec2 padded to 16 bytes.
const viewportUniformSize = 16

func putFloat32(buf []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(buf[offset:offset+4], math.Float32bits(v))
}

// encodeSceneVertex writes one scene vertex at the given offset.
func encodeSceneVertex(buf []byte, offset int, position common.Vec2, color [4]float32) {
	putFloat32(buf, offset, position.X)
	putFloat32(buf, offset+4, position.Y)
	putFloat32(buf, offset+8, color[0])
	putFloat32(buf, offset+12, color[1])
	putFloat32(buf, offset+16, color[2])
	putFloat32(buf, offset+20, color[3])
}

// encodeGroundVertex writes one ground-plane vertex at the given offset. The
// two components are the x and z coordinates on the unit grid.
func encodeGroundVertex(buf []byte, offset int, x, z float32) {
	putFloat32(buf, offset, x)
	putFloat32(buf, offset+4, z)
}

// encodeGroundUniforms packs the ground uniform block: the column-major
// transform matrix followed by the fill color.
func encodeGroundUniforms(transform common.Transform3D, color [4]float32) []byte {
	buf := make([]byte, groundUniformSize)
	for i, v := range transform {
		putFloat32(buf, i*4, v)
	}
	for i, v := range color {
		putFloat32(buf, 64+i*4, v)
	}
	return buf
}

// encodeViewportUniforms packs the scene uniform block: the viewport size in
// pixels, padded to the uniform alignment.
func encodeViewportUniforms(size common.Vec2i) []byte {
	buf := make([]byte, viewportUniformSize)
	putFloat32(buf, 0, float32(size.X))
	putFloat32(buf, 4, float32(size.Y))
	return buf
}
