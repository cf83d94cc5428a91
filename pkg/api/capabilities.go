package api

import "slices"

// Bone names whose presence marks a model as having finger or toe bones.
var (
	fingerMarkerBones = []string{"leftThumb1", "rightThumb1"}
	toeMarkerBones    = []string{"leftToes", "rightToes"}
)

// StandardExpressions is the expression set reported for a model that does
// not declare its own.
var StandardExpressions = []string{
	"neutral", "happy", "angry", "sad", "relaxed", "surprised",
	"blink", "blink_l", "blink_r", "look_up", "look_down",
	"look_left", "look_right", "a", "i", "u", "e", "o",
}

// StandardBones is the bone set reported for a model that does not declare
// its own.
var StandardBones = []string{
	"hips", "spine", "chest", "neck", "head",
	"leftShoulder", "leftUpperArm", "leftLowerArm", "leftHand",
	"rightShoulder", "rightUpperArm", "rightLowerArm", "rightHand",
	"leftUpperLeg", "leftLowerLeg", "leftFoot",
	"rightUpperLeg", "rightLowerLeg", "rightFoot",
}

// Capabilities describes the expressions and bones a model exposes.
//
// A Capabilities value is immutable. The finger and toe flags are derived
// from the bone set when the value is built and cannot be set directly.
// Methods are safe for concurrent use.
type Capabilities struct {
	expressions []string
	bones       []string
	exprSet     map[string]struct{}
	boneSet     map[string]struct{}

	hasFingerBones bool
	hasToeBones    bool
	hasSpringBones bool
}

// NewCapabilities builds a descriptor from expression and bone names.
// Duplicate names are dropped, keeping the first occurrence.
func NewCapabilities(expressions, bones []string, springBones bool) *Capabilities {
	c := &Capabilities{hasSpringBones: springBones}
	c.expressions, c.exprSet = uniqueNames(expressions)
	c.bones, c.boneSet = uniqueNames(bones)

	for _, b := range fingerMarkerBones {
		if c.HasBone(b) {
			c.hasFingerBones = true
		}
	}
	for _, b := range toeMarkerBones {
		if c.HasBone(b) {
			c.hasToeBones = true
		}
	}
	return c
}

// StandardCapabilities returns the descriptor used when a caller does not
// declare a model: the standard expression and bone sets with spring bone
// support.
func StandardCapabilities() *Capabilities {
	return NewCapabilities(StandardExpressions, StandardBones, true)
}

func uniqueNames(names []string) ([]string, map[string]struct{}) {
	set := make(map[string]struct{}, len(names))
	ordered := make([]string, 0, len(names))
	for _, n := range names {
		if _, dup := set[n]; dup {
			continue
		}
		set[n] = struct{}{}
		ordered = append(ordered, n)
	}
	return ordered, set
}

// HasExpression reports whether the model exposes the named expression.
func (c *Capabilities) HasExpression(name string) bool {
	_, ok := c.exprSet[name]
	return ok
}

// HasBone reports whether the model exposes the named bone.
func (c *Capabilities) HasBone(name string) bool {
	_, ok := c.boneSet[name]
	return ok
}

func (c *Capabilities) HasFingerBones() bool { return c.hasFingerBones }
func (c *Capabilities) HasToeBones() bool    { return c.hasToeBones }
func (c *Capabilities) HasSpringBones() bool { return c.hasSpringBones }

// Expressions returns the expression names in declaration order.
func (c *Capabilities) Expressions() []string { return slices.Clone(c.expressions) }

// Bones returns the bone names in declaration order.
func (c *Capabilities) Bones() []string { return slices.Clone(c.bones) }

// Spec returns the wire form of the descriptor.
func (c *Capabilities) Spec() CapabilitiesSpec {
	return CapabilitiesSpec{
		Expressions:    c.Expressions(),
		Bones:          c.Bones(),
		HasFingerBones: c.hasFingerBones,
		HasToeBones:    c.hasToeBones,
		HasSpringBones: c.hasSpringBones,
	}
}

// CapabilitiesSpec is the wire form of Capabilities. The finger and toe
// flags are informational: Capabilities re-derives them from Bones.
type CapabilitiesSpec struct {
	Expressions    []string `json:"expressions" jsonschema:"available facial expressions"`
	Bones          []string `json:"bones" jsonschema:"available bone nodes"`
	HasFingerBones bool     `json:"has_finger_bones,omitempty" jsonschema:"whether the model has detailed finger bones (derived)"`
	HasToeBones    bool     `json:"has_toe_bones,omitempty" jsonschema:"whether the model has toe bones (derived)"`
	HasSpringBones bool     `json:"has_spring_bones,omitempty" jsonschema:"whether the model has physics bones"`
}

// Capabilities builds the immutable descriptor from its wire form.
func (s CapabilitiesSpec) Capabilities() *Capabilities {
	return NewCapabilities(s.Expressions, s.Bones, s.HasSpringBones)
}
