// Package glbtest builds small GLB fixtures for tests.
package glbtest

import (
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/openheritage/arscale/internal/glb"
)

// BoxDocument returns a single-scene document containing one box mesh of
// the given extents, centered on the origin, attached to one root node.
func BoxDocument(width, height, depth float64) *gltf.Document {
	doc := gltf.NewDocument()

	hw := float32(width / 2)
	hh := float32(height / 2)
	hd := float32(depth / 2)

	pos := modeler.WritePosition(doc, [][3]float32{
		{-hw, -hh, -hd}, {-hw, -hh, hd}, {-hw, hh, -hd}, {-hw, hh, hd},
		{hw, -hh, -hd}, {hw, -hh, hd}, {hw, hh, -hd}, {hw, hh, hd},
	})
	ind := modeler.WriteIndices(doc, []uint16{
		0, 1, 3, 0, 3, 2,
		4, 6, 7, 4, 7, 5,
		0, 4, 5, 0, 5, 1,
		2, 3, 7, 2, 7, 6,
		0, 2, 6, 0, 6, 4,
		1, 5, 7, 1, 7, 3,
	})

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "box",
		Primitives: []*gltf.Primitive{{
			Attributes: gltf.Attribute{gltf.POSITION: pos},
			Indices:    index(ind),
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: "box",
		Mesh: index(uint32(len(doc.Meshes) - 1)),
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))

	return doc
}

// BoxGLB returns BoxDocument serialized as GLB bytes.
func BoxGLB(tb testing.TB, width, height, depth float64) []byte {
	tb.Helper()
	data, err := glb.Encode(BoxDocument(width, height, depth))
	if err != nil {
		tb.Fatalf("encode fixture: %v", err)
	}
	return data
}

func index(i uint32) *uint32 { return &i }
