package glb

import (
	"errors"
	"fmt"

	dmat "github.com/flywave/go3d/float64/mat4"
	"github.com/flywave/go3d/float64/quaternion"
	dvec3 "github.com/flywave/go3d/float64/vec3"
	dvec4 "github.com/flywave/go3d/float64/vec4"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/openheritage/arscale/internal/scaling"
)

// ErrNoScene marks a document with no default scene and no scenes at all.
var ErrNoScene = errors.New("model contains no scene")

// ExtractBounds computes the world-space axis-aligned bounding box of the
// document's default scene (or its first scene) and returns the extents in
// meters; glTF fixes 1 unit = 1 meter. An empty scene yields zero extents.
func ExtractBounds(doc *gltf.Document) (scaling.Dimensions, error) {
	scene := targetScene(doc)
	if scene == nil {
		return scaling.Dimensions{}, ErrNoScene
	}

	box := dvec3.MinBox
	for _, root := range scene.Nodes {
		if err := extendNodeBounds(doc, root, &dmat.Ident, &box); err != nil {
			return scaling.Dimensions{}, err
		}
	}

	return scaling.Dimensions{
		Width:  span(box.Min[0], box.Max[0]),
		Height: span(box.Min[1], box.Max[1]),
		Depth:  span(box.Min[2], box.Max[2]),
	}, nil
}

// targetScene selects the declared default scene, falling back to the
// first one. Returns nil when the document declares no scenes.
func targetScene(doc *gltf.Document) *gltf.Scene {
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene]
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0]
	}
	return nil
}

func extendNodeBounds(doc *gltf.Document, idx uint32, parent *dmat.T, box *dvec3.Box) error {
	if int(idx) >= len(doc.Nodes) {
		return nil
	}
	nd := doc.Nodes[idx]

	world := dmat.Ident
	world.AssignMul(parent, nodeTransform(nd))

	if nd.Mesh != nil && int(*nd.Mesh) < len(doc.Meshes) {
		for _, prim := range doc.Meshes[*nd.Mesh].Primitives {
			if err := extendPrimitiveBounds(doc, prim, &world, box); err != nil {
				return err
			}
		}
	}

	for _, child := range nd.Children {
		if err := extendNodeBounds(doc, child, &world, box); err != nil {
			return err
		}
	}
	return nil
}

func extendPrimitiveBounds(doc *gltf.Document, prim *gltf.Primitive, world *dmat.T, box *dvec3.Box) error {
	pos, ok := prim.Attributes[gltf.POSITION]
	if !ok || int(pos) >= len(doc.Accessors) {
		return nil
	}
	acc := doc.Accessors[pos]

	// POSITION accessors are required to declare min/max; transforming the
	// eight box corners is enough and avoids touching the vertex stream.
	if len(acc.Min) == 3 && len(acc.Max) == 3 {
		for _, corner := range boxCorners(acc.Min, acc.Max) {
			v := world.MulVec3(&corner)
			box.Extend(&v)
		}
		return nil
	}

	verts, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}
	for _, vt := range verts {
		v := dvec3.T{float64(vt[0]), float64(vt[1]), float64(vt[2])}
		v = world.MulVec3(&v)
		box.Extend(&v)
	}
	return nil
}

// nodeTransform returns the node's local transform, honoring an explicit
// matrix over the TRS form as the glTF spec requires.
func nodeTransform(nd *gltf.Node) *dmat.T {
	if m := nd.MatrixOrDefault(); m != gltf.DefaultMatrix {
		t := dmat.T{}
		t[0] = dvec4.T{float64(m[0]), float64(m[1]), float64(m[2]), float64(m[3])}
		t[1] = dvec4.T{float64(m[4]), float64(m[5]), float64(m[6]), float64(m[7])}
		t[2] = dvec4.T{float64(m[8]), float64(m[9]), float64(m[10]), float64(m[11])}
		t[3] = dvec4.T{float64(m[12]), float64(m[13]), float64(m[14]), float64(m[15])}
		return &t
	}

	s := nd.ScaleOrDefault()
	tr := nd.TranslationOrDefault()
	r := nd.RotationOrDefault()

	sc := dvec3.T{float64(s[0]), float64(s[1]), float64(s[2])}
	tra := dvec3.T{float64(tr[0]), float64(tr[1]), float64(tr[2])}
	rot := quaternion.T{float64(r[0]), float64(r[1]), float64(r[2]), float64(r[3])}
	return dmat.Compose(&tra, &rot, &sc)
}

func boxCorners(min, max []float32) [8]dvec3.T {
	lo := dvec3.T{float64(min[0]), float64(min[1]), float64(min[2])}
	hi := dvec3.T{float64(max[0]), float64(max[1]), float64(max[2])}
	return [8]dvec3.T{
		{lo[0], lo[1], lo[2]},
		{lo[0], lo[1], hi[2]},
		{lo[0], hi[1], lo[2]},
		{lo[0], hi[1], hi[2]},
		{hi[0], lo[1], lo[2]},
		{hi[0], lo[1], hi[2]},
		{hi[0], hi[1], lo[2]},
		{hi[0], hi[1], hi[2]},
	}
}

// span returns max-min, treating inverted extents from an empty or
// degenerate scene as zero.
func span(min, max float64) float64 {
	if max <= min {
		return 0
	}
	return max - min
}
