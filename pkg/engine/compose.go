package engine

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/mapping"
	"github.com/rhuss/vrmaction/pkg/templates"
)

// Resolution describes what Compose could not map onto the model.
type Resolution struct {
	DroppedExpressions []string
	DroppedBones       []string
	Synthesized        bool
}

// Compose builds the action record for actionType on a model with the given
// capabilities. Template expressions and bones that the model cannot
// express are dropped. When no template exists, bone transforms are
// synthesized from keywords in the action type.
//
// Compose is pure: identical inputs give identical records.
func Compose(actionType string, intensity, duration float64, caps *api.Capabilities) (api.ActionRecord, error) {
	rec, _, err := compose(actionType, intensity, duration, caps)
	return rec, err
}

func compose(actionType string, intensity, duration float64, caps *api.Capabilities) (api.ActionRecord, Resolution, error) {
	var res Resolution
	if caps == nil {
		return api.ActionRecord{}, res, ErrMissingCapabilities
	}

	rec := api.ActionRecord{
		Name:           ActionName(actionType, intensity),
		Duration:       duration,
		Expressions:    []api.ExpressionEntry{},
		BoneTransforms: []api.BoneTransform{},
		Loop:           templates.Loopable(actionType),
	}

	tmpl, _ := templates.Lookup(actionType)
	if tmpl.Empty() {
		rec.BoneTransforms = Synthesize(actionType, intensity, caps)
		res.Synthesized = true
		return rec, res, nil
	}

	for _, e := range tmpl.Expressions {
		name, ok := mapping.ResolveExpression(e.Name, caps)
		if !ok {
			res.DroppedExpressions = append(res.DroppedExpressions, e.Name)
			continue
		}
		rec.Expressions = append(rec.Expressions, api.ExpressionEntry{
			Name:  name,
			Value: mgl64.Clamp(e.Value*intensity, 0, 1),
		})
	}

	for _, b := range tmpl.Bones {
		bones := mapping.ResolveBone(b.Name, caps)
		if len(bones) == 0 {
			res.DroppedBones = append(res.DroppedBones, b.Name)
			continue
		}
		for _, bone := range bones {
			rec.BoneTransforms = append(rec.BoneTransforms, api.BoneTransform{
				BoneName: bone,
				Rotation: mapping.AdaptRotation(b.Rotation, bone, intensity),
				Position: copyVec(b.Position),
			})
		}
	}

	return rec, res, nil
}

// ActionName formats the record name "{actionType}_{intensity}". The
// intensity uses the shortest round-trip form and always keeps a
// fractional digit, so 1 prints as "1.0". Magnitudes below 1e-4 or from
// 1e16 up switch to exponent form ("1e-05").
func ActionName(actionType string, intensity float64) string {
	format := byte('f')
	if abs := math.Abs(intensity); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		format = 'e'
	}
	s := strconv.FormatFloat(intensity, format, -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return actionType + "_" + s
}

func copyVec(v *mgl64.Vec3) *mgl64.Vec3 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
