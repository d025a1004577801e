// Package glb decodes glTF-binary assets, measures their scene bounds and
// rewrites root-node scales in place.
package glb

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
)

// ContentType is the registered media type for glTF-binary payloads.
const ContentType = "model/gltf-binary"

// ErrDecode marks input bytes that did not parse as a glTF asset.
var ErrDecode = errors.New("malformed model binary")

// Decode parses GLB (or embedded-JSON glTF) bytes into a scene document.
func Decode(data []byte) (*gltf.Document, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return doc, nil
}

// Encode serializes the document back to GLB. Buffer data, materials and
// extensions round-trip untouched; only values mutated on the document
// beforehand differ from the source bytes.
func Encode(doc *gltf.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode glb: %w", err)
	}
	return buf.Bytes(), nil
}
