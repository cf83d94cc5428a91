package mapping

import (
	"slices"
	"strings"
)

// BoneSet reports which bones a model exposes.
type BoneSet interface {
	HasBone(name string) bool
	HasFingerBones() bool
}

// boneAlternatives lists replacement bones for canonical bones, in priority
// order.
var boneAlternatives = map[string][]string{
	"rightUpperArm": {"rightArm", "rightShoulder"},
	"leftUpperArm":  {"leftArm", "leftShoulder"},
	"rightLowerArm": {"rightForearm", "rightElbow"},
	"leftLowerArm":  {"leftForearm", "leftElbow"},
	"spine":         {"chest", "upperChest", "torso"},
	"neck":          {"head", "spine"},
	"rightHand":     {"rightWrist"},
	"leftHand":      {"leftWrist"},
}

var (
	fingerDigits = []string{"Thumb", "Index", "Middle", "Ring", "Little"}
	fingerJoints = []string{"1", "2", "3"}
)

// BoneAlternatives returns the replacement bones for a canonical bone in
// priority order, or nil when the bone has none.
func BoneAlternatives(name string) []string {
	return slices.Clone(boneAlternatives[name])
}

// IsHandBone reports whether name is one of the canonical hand bones.
func IsHandBone(name string) bool {
	return name == "rightHand" || name == "leftHand"
}

// ResolveBone maps a desired bone to zero or more bones the model exposes.
//
// A direct match is used as is. Without one, the first available
// alternative is used and the search stops there. Hand bones on a model
// with finger bones additionally expand to every finger joint the model
// exposes, whether or not the hand itself resolved. The result is not
// de-duplicated.
func ResolveBone(desired string, available BoneSet) []string {
	var resolved []string

	if available.HasBone(desired) {
		resolved = append(resolved, desired)
	}

	if len(resolved) == 0 {
		for _, alt := range boneAlternatives[desired] {
			if available.HasBone(alt) {
				resolved = append(resolved, alt)
				break
			}
		}
	}

	if IsHandBone(desired) && available.HasFingerBones() {
		resolved = append(resolved, FingerBones(desired, available)...)
	}

	return resolved
}

// FingerBones lists the finger joints of the given hand that the model
// exposes, thumb to little finger, proximal to distal.
func FingerBones(hand string, available BoneSet) []string {
	side := "left"
	if strings.Contains(strings.ToLower(hand), "right") {
		side = "right"
	}

	var fingers []string
	for _, digit := range fingerDigits {
		for _, joint := range fingerJoints {
			name := side + digit + joint
			if available.HasBone(name) {
				fingers = append(fingers, name)
			}
		}
	}
	return fingers
}
