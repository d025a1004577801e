package glb

import "github.com/qmuntal/gltf"

// ApplyScale composes factor into the local scale of every root node of
// the target scene. Child nodes are untouched; their world scale changes
// transitively through the parent, standard scene-graph semantics. Nodes
// carrying an explicit matrix get their linear part scaled instead,
// leaving the translation column alone.
func ApplyScale(doc *gltf.Document, factor float64) error {
	scene := targetScene(doc)
	if scene == nil {
		return ErrNoScene
	}

	f := float32(factor)
	for _, idx := range scene.Nodes {
		if int(idx) >= len(doc.Nodes) {
			continue
		}
		nd := doc.Nodes[idx]

		if m := nd.MatrixOrDefault(); m != gltf.DefaultMatrix {
			for i := 0; i < 12; i++ {
				m[i] *= f
			}
			nd.Matrix = m
			continue
		}

		s := nd.ScaleOrDefault()
		nd.Scale = [3]float32{s[0] * f, s[1] * f, s[2] * f}
	}
	return nil
}
