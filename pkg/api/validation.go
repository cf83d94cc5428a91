package api

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ValidateIntensity checks that an intensity lies in [0, 1].
func ValidateIntensity(param string, v float64) *APIError {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return NewValidationError(CodeOutOfRange, param, "intensity must be between 0.0 and 1.0")
	}
	return nil
}

// ValidateDuration checks that a duration is a positive, finite number of seconds.
func ValidateDuration(param string, v float64) *APIError {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return NewValidationError(CodeOutOfRange, param, "duration must be a positive number of seconds")
	}
	return nil
}

// ValidateActionType checks that an action type identifier is present.
func ValidateActionType(param, actionType string) *APIError {
	if strings.TrimSpace(actionType) == "" {
		return NewValidationError(CodeMissingField, param, "action type is required")
	}
	return nil
}

var (
	expressionFields = []string{"name", "value"}
	boneFields       = []string{"bone_name", "rotation", "position"}
)

// ParseExpressions converts loosely shaped expression objects into
// ExpressionEntry values. The first invalid entry aborts parsing.
func ParseExpressions(raw []map[string]any) ([]ExpressionEntry, *APIError) {
	out := make([]ExpressionEntry, 0, len(raw))
	for i, m := range raw {
		e, apiErr := ParseExpression(fmt.Sprintf("expressions[%d]", i), m)
		if apiErr != nil {
			return nil, apiErr
		}
		out = append(out, e)
	}
	return out, nil
}

// ParseExpression converts one {"name", "value"} object. Unknown keys,
// missing keys, wrong types and values outside [0, 1] are rejected.
func ParseExpression(param string, m map[string]any) (ExpressionEntry, *APIError) {
	if apiErr := rejectUnknown(param, m, expressionFields); apiErr != nil {
		return ExpressionEntry{}, apiErr
	}
	name, apiErr := requiredString(param+".name", m, "name")
	if apiErr != nil {
		return ExpressionEntry{}, apiErr
	}
	rawValue, ok := m["value"]
	if !ok {
		return ExpressionEntry{}, NewValidationError(CodeMissingField, param+".value", "value is required")
	}
	value, ok := toFloat(rawValue)
	if !ok {
		return ExpressionEntry{}, NewValidationError(CodeInvalidType, param+".value", "value must be a number")
	}
	if math.IsNaN(value) || value < 0 || value > 1 {
		return ExpressionEntry{}, NewValidationError(CodeOutOfRange, param+".value", "value must be between 0.0 and 1.0")
	}
	return ExpressionEntry{Name: name, Value: value}, nil
}

// ParseBoneTransforms converts loosely shaped bone transform objects into
// BoneTransform values. The first invalid entry aborts parsing.
func ParseBoneTransforms(raw []map[string]any) ([]BoneTransform, *APIError) {
	out := make([]BoneTransform, 0, len(raw))
	for i, m := range raw {
		bt, apiErr := ParseBoneTransform(fmt.Sprintf("bone_transforms[%d]", i), m)
		if apiErr != nil {
			return nil, apiErr
		}
		out = append(out, bt)
	}
	return out, nil
}

// ParseBoneTransform converts one {"bone_name", "rotation", "position"}
// object. Rotation is required; position is optional. Both must be
// three-element numeric arrays.
func ParseBoneTransform(param string, m map[string]any) (BoneTransform, *APIError) {
	if apiErr := rejectUnknown(param, m, boneFields); apiErr != nil {
		return BoneTransform{}, apiErr
	}
	name, apiErr := requiredString(param+".bone_name", m, "bone_name")
	if apiErr != nil {
		return BoneTransform{}, apiErr
	}
	rawRot, ok := m["rotation"]
	if !ok {
		return BoneTransform{}, NewValidationError(CodeMissingField, param+".rotation", "rotation is required")
	}
	rot, apiErr := toVec3(param+".rotation", rawRot)
	if apiErr != nil {
		return BoneTransform{}, apiErr
	}
	bt := BoneTransform{BoneName: name, Rotation: rot}
	if rawPos, ok := m["position"]; ok && rawPos != nil {
		pos, apiErr := toVec3(param+".position", rawPos)
		if apiErr != nil {
			return BoneTransform{}, apiErr
		}
		bt.Position = &pos
	}
	return bt, nil
}

func rejectUnknown(param string, m map[string]any, allowed []string) *APIError {
	var unknown []string
	for k := range m {
		if !slices.Contains(allowed, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return NewValidationError(CodeUnknownField, param+"."+unknown[0],
		fmt.Sprintf("unknown field %q", unknown[0]))
}

func requiredString(param string, m map[string]any, key string) (string, *APIError) {
	v, ok := m[key]
	if !ok {
		return "", NewValidationError(CodeMissingField, param, key+" is required")
	}
	s, ok := v.(string)
	if !ok {
		return "", NewValidationError(CodeInvalidType, param, key+" must be a string")
	}
	if s == "" {
		return "", NewValidationError(CodeMissingField, param, key+" must not be empty")
	}
	return s, nil
}

func toVec3(param string, v any) (mgl64.Vec3, *APIError) {
	switch vv := v.(type) {
	case mgl64.Vec3:
		return vv, nil
	case []float64:
		if len(vv) != 3 {
			return mgl64.Vec3{}, vec3LenError(param, len(vv))
		}
		return mgl64.Vec3{vv[0], vv[1], vv[2]}, nil
	case []any:
		if len(vv) != 3 {
			return mgl64.Vec3{}, vec3LenError(param, len(vv))
		}
		var out mgl64.Vec3
		for i, c := range vv {
			f, ok := toFloat(c)
			if !ok {
				return mgl64.Vec3{}, NewValidationError(CodeInvalidType,
					fmt.Sprintf("%s[%d]", param, i), "vector components must be numbers")
			}
			out[i] = f
		}
		return out, nil
	default:
		return mgl64.Vec3{}, NewValidationError(CodeInvalidType, param, "must be an array of three numbers")
	}
}

func vec3LenError(param string, n int) *APIError {
	return NewValidationError(CodeInvalidType, param,
		fmt.Sprintf("must have exactly 3 components, got %d", n))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
