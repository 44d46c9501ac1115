package main

import "fmt"

// maxMeshVertices is the ceiling imposed by 16-bit index addressing.
const maxMeshVertices = 65536

type meshVertex struct {
	position [3]float32
	texcoord [2]float32
}

// Mesh is static geometry built once at initialization: interleaved
// positions and texture coordinates plus a triangulated index buffer.
// Nothing mutates it per frame; height displacement for the 3D mode
// happens in the vertex shader by sampling the ring buffer texture at
// each vertex UV.
type Mesh struct {
	vertices []meshVertex
	indices  []uint16
	cols     int
	rows     int
}

// NewHeightfieldMesh builds a cols×rows grid of vertices in the XZ
// plane spanning worldSize, with UVs proportional to grid index and
// two consistently wound triangles per cell. Exceeding the 16-bit
// index ceiling is a construction failure, never a runtime one.
func NewHeightfieldMesh(cols, rows int, worldSize float32) (*Mesh, error) {
	if cols < 2 || rows < 2 {
		return nil, fmt.Errorf("heightfield: grid %dx%d too small", cols, rows)
	}
	if cols*rows > maxMeshVertices {
		return nil, fmt.Errorf("heightfield: %dx%d = %d vertices exceeds the %d index limit",
			cols, rows, cols*rows, maxMeshVertices)
	}
	vertices := make([]meshVertex, 0, cols*rows)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			vertices = append(vertices, meshVertex{
				position: [3]float32{
					worldSize * float32(i-cols/2) / float32(cols),
					0,
					worldSize * float32(j-rows/2) / float32(rows),
				},
				texcoord: [2]float32{
					float32(i) / float32(cols-1),
					float32(j) / float32(rows-1),
				},
			})
		}
	}
	indices := make([]uint16, 0, (cols-1)*(rows-1)*6)
	for j := 0; j < rows-1; j++ {
		for i := 0; i < cols-1; i++ {
			base := j*cols + i
			indices = append(indices,
				uint16(base), uint16(base+1), uint16(base+cols+1),
				uint16(base), uint16(base+cols+1), uint16(base+cols))
		}
	}
	return &Mesh{
		vertices: vertices,
		indices:  indices,
		cols:     cols,
		rows:     rows,
	}, nil
}

// NewQuadMesh builds the two-triangle clip-space quad used by the 2D
// modes.
func NewQuadMesh() *Mesh {
	return &Mesh{
		vertices: []meshVertex{
			{position: [3]float32{-1, -1, 0}, texcoord: [2]float32{0, 0}},
			{position: [3]float32{1, -1, 0}, texcoord: [2]float32{1, 0}},
			{position: [3]float32{1, 1, 0}, texcoord: [2]float32{1, 1}},
			{position: [3]float32{-1, 1, 0}, texcoord: [2]float32{0, 1}},
		},
		indices: []uint16{0, 1, 2, 0, 2, 3},
		cols:    2,
		rows:    2,
	}
}

func (m *Mesh) VertexCount() int   { return len(m.vertices) }
func (m *Mesh) IndexCount() int    { return len(m.indices) }
func (m *Mesh) TriangleCount() int { return len(m.indices) / 3 }
