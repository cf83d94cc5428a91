package engine

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/mapping"
)

// Synthesize derives bone transforms from keywords in actionType for
// actions without a template. Keywords are matched case-insensitively in
// the order wave/hello, dance/move, point/indicate; the first group that
// matches wins. Only bones the model has are emitted, and rotations are
// scaled by intensity without clamping. Unmatched action types yield no
// transforms.
func Synthesize(actionType string, intensity float64, bones mapping.BoneSet) []api.BoneTransform {
	lower := strings.ToLower(actionType)
	out := []api.BoneTransform{}

	emit := func(bone string, rotation mgl64.Vec3) {
		if bones.HasBone(bone) {
			out = append(out, api.BoneTransform{BoneName: bone, Rotation: rotation})
		}
	}

	switch {
	case containsAny(lower, "wave", "hello"):
		emit("rightUpperArm", mgl64.Vec3{0, 0, -1.57 * intensity})
	case containsAny(lower, "dance", "move"):
		emit("spine", mgl64.Vec3{0, 0.3 * intensity, 0})
		emit("rightUpperArm", mgl64.Vec3{0, 0, 1.0 * intensity})
		emit("leftUpperArm", mgl64.Vec3{0, 0, -1.0 * intensity})
	case containsAny(lower, "point", "indicate"):
		emit("rightUpperArm", mgl64.Vec3{0, -0.5 * intensity, -1.2 * intensity})
	}
	return out
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
