// Package templates holds the built-in action templates. A template names
// the expressions and bones an action wants in canonical form; it is
// resolved against a concrete model by the engine.
package templates

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// Expression is a desired expression with its base value at intensity 1.
type Expression struct {
	Name  string
	Value float64
}

// Bone is a desired bone with its base rotation at intensity 1 and an
// optional position that is passed through unchanged.
type Bone struct {
	Name     string
	Rotation mgl64.Vec3
	Position *mgl64.Vec3
}

// Template is an unresolved action.
type Template struct {
	Expressions []Expression
	Bones       []Bone
}

// Empty reports whether the template contributes nothing. Empty templates
// are treated like missing ones.
func (t Template) Empty() bool {
	return len(t.Expressions) == 0 && len(t.Bones) == 0
}

// clone returns a deep copy so callers cannot reach the builtin table.
func (t Template) clone() Template {
	out := Template{
		Expressions: slices.Clone(t.Expressions),
		Bones:       slices.Clone(t.Bones),
	}
	for i, b := range out.Bones {
		if b.Position != nil {
			p := *b.Position
			out.Bones[i].Position = &p
		}
	}
	return out
}

type entry struct {
	name     string
	template Template
}

// builtin is ordered; Names reports action types in this order.
var builtin = []entry{
	{"wave_hello", Template{
		Expressions: []Expression{{"happy", 0.7}},
		Bones: []Bone{
			{Name: "rightUpperArm", Rotation: mgl64.Vec3{0, 0, -1.57}},
			{Name: "rightLowerArm", Rotation: mgl64.Vec3{0, 0, -0.5}},
		},
	}},
	{"dance_basic", Template{
		Expressions: []Expression{{"happy", 0.8}},
		Bones: []Bone{
			{Name: "leftUpperArm", Rotation: mgl64.Vec3{0, 0, 1.0}},
			{Name: "rightUpperArm", Rotation: mgl64.Vec3{0, 0, -1.0}},
			{Name: "spine", Rotation: mgl64.Vec3{0, 0.3, 0}},
		},
	}},
	{"point_finger", Template{
		Bones: []Bone{
			{Name: "rightUpperArm", Rotation: mgl64.Vec3{0, -0.5, -1.2}},
			{Name: "rightLowerArm", Rotation: mgl64.Vec3{0, 0, -0.3}},
		},
	}},
	{"bow", Template{
		Expressions: []Expression{{"neutral", 1.0}},
		Bones: []Bone{
			{Name: "spine", Rotation: mgl64.Vec3{0.8, 0, 0}},
			{Name: "neck", Rotation: mgl64.Vec3{0.3, 0, 0}},
		},
	}},
	{"clap", Template{
		Expressions: []Expression{{"happy", 0.6}},
		Bones: []Bone{
			{Name: "rightUpperArm", Rotation: mgl64.Vec3{0, -0.8, -1.0}},
			{Name: "leftUpperArm", Rotation: mgl64.Vec3{0, 0.8, 1.0}},
			{Name: "rightLowerArm", Rotation: mgl64.Vec3{0, 0, -1.2}},
			{Name: "leftLowerArm", Rotation: mgl64.Vec3{0, 0, 1.2}},
		},
	}},
}

// loopable lists action types whose records loop. idle_animation has no
// template and is always synthesized.
var loopable = map[string]bool{
	"dance_basic":    true,
	"idle_animation": true,
}

// Lookup returns a copy of the template for actionType.
func Lookup(actionType string) (Template, bool) {
	for _, e := range builtin {
		if e.name == actionType {
			return e.template.clone(), true
		}
	}
	return Template{}, false
}

// Names returns the built-in action types in declaration order.
func Names() []string {
	names := make([]string, len(builtin))
	for i, e := range builtin {
		names[i] = e.name
	}
	return names
}

// Loopable reports whether records for actionType should loop.
func Loopable(actionType string) bool {
	return loopable[actionType]
}
