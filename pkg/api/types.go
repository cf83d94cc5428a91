package api

import "github.com/go-gl/mathgl/mgl64"

// ExpressionEntry is a facial expression resolved against a model, with an
// intensity in [0, 1].
type ExpressionEntry struct {
	Name  string  `json:"name" jsonschema:"expression name as exposed by the model"`
	Value float64 `json:"value" jsonschema:"expression intensity between 0 and 1"`
}

// BoneTransform is a rotation, and optionally a position offset, applied to
// a named skeletal bone.
type BoneTransform struct {
	BoneName string      `json:"bone_name" jsonschema:"bone name as exposed by the model"`
	Rotation mgl64.Vec3  `json:"rotation" jsonschema:"euler rotation [x, y, z] in radians"`
	Position *mgl64.Vec3 `json:"position,omitempty" jsonschema:"optional position offset [x, y, z]"`
}

// ActionRecord is a single pose snapshot for a model: expression
// intensities, bone transforms, a playback duration and a loop flag.
type ActionRecord struct {
	Name           string            `json:"name" jsonschema:"action name"`
	Duration       float64           `json:"duration" jsonschema:"action duration in seconds"`
	Expressions    []ExpressionEntry `json:"expressions" jsonschema:"expression intensities"`
	BoneTransforms []BoneTransform   `json:"bone_transforms" jsonschema:"bone transforms"`
	Loop           bool              `json:"loop" jsonschema:"whether the action should loop"`
}

// StoredAction is an ActionRecord persisted in the action history.
type StoredAction struct {
	ID         string       `json:"id"`
	ActionType string       `json:"action_type"`
	Intensity  float64      `json:"intensity"`
	Action     ActionRecord `json:"action"`
	CreatedAt  int64        `json:"created_at"`
}

// ActionList is one page of the action history.
type ActionList struct {
	Object  string          `json:"object"`
	Data    []*StoredAction `json:"data"`
	FirstID string          `json:"first_id,omitempty"`
	LastID  string          `json:"last_id,omitempty"`
	HasMore bool            `json:"has_more"`
}
