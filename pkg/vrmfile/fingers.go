package vrmfile

import "strings"

var fingerDigits = []string{"Thumb", "Index", "Middle", "Ring", "Little"}

// fingerJoint rewrites a humanoid finger bone such as leftIndexProximal to
// its numbered form (leftIndex1). thumbJoints, when set, overrides joints
// for the thumb. Non-finger bones and unknown joints are returned unchanged.
func fingerJoint(bone string, joints, thumbJoints map[string]string) string {
	for _, side := range []string{"left", "right"} {
		rest, ok := strings.CutPrefix(bone, side)
		if !ok {
			continue
		}
		for _, digit := range fingerDigits {
			joint, ok := strings.CutPrefix(rest, digit)
			if !ok {
				continue
			}
			table := joints
			if digit == "Thumb" && thumbJoints != nil {
				table = thumbJoints
			}
			if n, ok := table[joint]; ok {
				return side + digit + n
			}
			return bone
		}
	}
	return bone
}
