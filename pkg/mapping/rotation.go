package mapping

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// BoneCategory groups bones that share rotation limits.
type BoneCategory int

const (
	CategoryUnclamped BoneCategory = iota
	CategoryFinger
	CategoryNeck
	CategorySpine
)

const (
	fingerLimit     = 0.5
	neckPitchLimit  = 0.8
	neckYawLimit    = 1.2
	spinePitchLimit = 1.0
)

// Categorize classifies a bone by case-insensitive substring. Fingers
// (including thumbs) take precedence over neck, and neck over spine.
func Categorize(boneName string) BoneCategory {
	lower := strings.ToLower(boneName)
	switch {
	case strings.Contains(lower, "finger"), strings.Contains(lower, "thumb"):
		return CategoryFinger
	case strings.Contains(lower, "neck"):
		return CategoryNeck
	case strings.Contains(lower, "spine"):
		return CategorySpine
	default:
		return CategoryUnclamped
	}
}

// AdaptRotation scales a template rotation by intensity and clamps it to
// the limits of the bone's category.
func AdaptRotation(base mgl64.Vec3, boneName string, intensity float64) mgl64.Vec3 {
	r := base.Mul(intensity)

	switch Categorize(boneName) {
	case CategoryFinger:
		for i := range r {
			r[i] = mgl64.Clamp(r[i], -fingerLimit, fingerLimit)
		}
	case CategoryNeck:
		r[0] = mgl64.Clamp(r[0], -neckPitchLimit, neckPitchLimit)
		r[1] = mgl64.Clamp(r[1], -neckYawLimit, neckYawLimit)
	case CategorySpine:
		r[0] = mgl64.Clamp(r[0], -spinePitchLimit, spinePitchLimit)
	}
	return r
}
