// Package vrmfile derives action capabilities from VRM avatar files.
//
// VRM files are binary glTF documents with a humanoid description stored in
// a top-level extension: "VRM" for VRM 0.x and "VRMC_vrm" (plus
// "VRMC_springBone") for VRM 1.0. Plain glTF files without these
// extensions fall back to their node names and expose no expressions.
//
// Finger bones are reported in the numbered joint form used by the action
// tables (leftThumb1 .. leftLittle3), so that hand actions can expand to
// the model's fingers.
package vrmfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"

	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/debug"
)

// VRM format versions reported in Model.Version.
const (
	VersionNone = ""
	Version0    = "0.x"
	Version1    = "1.0"
)

// Extension names.
const (
	extVRM0       = "VRM"
	extVRM1       = "VRMC_vrm"
	extSpringBone = "VRMC_springBone"
)

// ErrNotGLTF is returned when the input cannot be decoded as glTF.
var ErrNotGLTF = errors.New("vrmfile: not a glTF document")

// Model summarizes what a VRM file exposes to the action engine.
type Model struct {
	Version     string   `json:"version,omitempty"`
	Title       string   `json:"title,omitempty"`
	Expressions []string `json:"expressions"`
	Bones       []string `json:"bones"`
	SpringBones bool     `json:"spring_bones"`
}

// Capabilities returns the capability descriptor for the model.
func (m *Model) Capabilities() *api.Capabilities {
	return api.NewCapabilities(m.Expressions, m.Bones, m.SpringBones)
}

// Open reads a .vrm, .glb or .gltf file.
func Open(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotGLTF, path, err)
	}
	return FromDocument(doc)
}

// Decode reads a self-contained glTF document (binary or JSON) from r.
func Decode(r io.Reader) (*Model, error) {
	var doc gltf.Document
	if err := gltf.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotGLTF, err)
	}
	return FromDocument(&doc)
}

// FromDocument extracts the model description from a decoded document.
func FromDocument(doc *gltf.Document) (*Model, error) {
	var (
		m   *Model
		err error
	)
	switch {
	case hasExtension(doc, extVRM1):
		m, err = fromVRM1(doc)
	case hasExtension(doc, extVRM0):
		m, err = fromVRM0(doc)
	default:
		m = fromNodes(doc)
	}
	if err != nil {
		return nil, err
	}

	debug.Log("mapping", "vrm model inspected",
		"version", m.Version,
		"expressions", len(m.Expressions),
		"bones", len(m.Bones),
		"spring_bones", m.SpringBones,
	)
	return m, nil
}

func hasExtension(doc *gltf.Document, name string) bool {
	_, ok := doc.Extensions[name]
	return ok
}

// extension decodes a top-level extension into v. Unregistered extensions
// are kept as raw JSON by the glTF decoder; anything else is re-marshaled.
func extension(doc *gltf.Document, name string, v any) error {
	raw, ok := doc.Extensions[name]
	if !ok {
		return nil
	}
	data, ok := raw.(json.RawMessage)
	if !ok {
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return fmt.Errorf("vrmfile: extension %s: %w", name, err)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("vrmfile: extension %s: %w", name, err)
	}
	return nil
}

// fromNodes describes a plain glTF file by its named nodes.
func fromNodes(doc *gltf.Document) *Model {
	m := &Model{Version: VersionNone, Expressions: []string{}, Bones: []string{}}
	for _, n := range doc.Nodes {
		if n != nil && n.Name != "" {
			m.Bones = append(m.Bones, n.Name)
		}
	}
	return m
}

// appendUnique appends name unless it is empty or already present.
func appendUnique(names []string, seen map[string]bool, name string) []string {
	if name == "" || seen[name] {
		return names
	}
	seen[name] = true
	return append(names, name)
}
