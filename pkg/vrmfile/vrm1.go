package vrmfile

import (
	"slices"

	"github.com/qmuntal/gltf"
)

type vrm1Extension struct {
	SpecVersion string `json:"specVersion"`
	Meta        struct {
		Name string `json:"name"`
	} `json:"meta"`
	Humanoid struct {
		HumanBones map[string]struct {
			Node int `json:"node"`
		} `json:"humanBones"`
	} `json:"humanoid"`
	Expressions struct {
		Preset map[string]expressionDef `json:"preset"`
		Custom map[string]expressionDef `json:"custom"`
	} `json:"expressions"`
}

// expressionDef ignores the body of an expression definition; only the
// names matter here.
type expressionDef struct{}

type springBoneExtension struct {
	Springs []struct {
		Joints []struct {
			Node int `json:"node"`
		} `json:"joints"`
	} `json:"springs"`
}

// vrm1Joints maps VRM 1.0 finger joint names to joint numbers. The thumb
// has no intermediate joint in VRM 1.0.
var (
	vrm1Joints = map[string]string{
		"Proximal":     "1",
		"Intermediate": "2",
		"Distal":       "3",
	}
	vrm1ThumbJoints = map[string]string{
		"Metacarpal": "1",
		"Proximal":   "2",
		"Distal":     "3",
	}
)

// vrm1PresetOrder lists the VRM 1.0 preset expressions in specification
// order; presets are reported in this order, then custom expressions
// sorted by name.
var vrm1PresetOrder = []string{
	"happy", "angry", "sad", "relaxed", "surprised",
	"aa", "ih", "ou", "ee", "oh",
	"blink", "blinkLeft", "blinkRight",
	"lookUp", "lookDown", "lookLeft", "lookRight",
	"neutral",
}

// vrm1BoneOrder lists VRM 1.0 humanoid bones in specification order, so
// that bone lists are stable regardless of JSON key order.
var vrm1BoneOrder = []string{
	"hips", "spine", "chest", "upperChest", "neck", "head",
	"leftEye", "rightEye", "jaw",
	"leftUpperLeg", "leftLowerLeg", "leftFoot", "leftToes",
	"rightUpperLeg", "rightLowerLeg", "rightFoot", "rightToes",
	"leftShoulder", "leftUpperArm", "leftLowerArm", "leftHand",
	"rightShoulder", "rightUpperArm", "rightLowerArm", "rightHand",
	"leftThumbMetacarpal", "leftThumbProximal", "leftThumbDistal",
	"leftIndexProximal", "leftIndexIntermediate", "leftIndexDistal",
	"leftMiddleProximal", "leftMiddleIntermediate", "leftMiddleDistal",
	"leftRingProximal", "leftRingIntermediate", "leftRingDistal",
	"leftLittleProximal", "leftLittleIntermediate", "leftLittleDistal",
	"rightThumbMetacarpal", "rightThumbProximal", "rightThumbDistal",
	"rightIndexProximal", "rightIndexIntermediate", "rightIndexDistal",
	"rightMiddleProximal", "rightMiddleIntermediate", "rightMiddleDistal",
	"rightRingProximal", "rightRingIntermediate", "rightRingDistal",
	"rightLittleProximal", "rightLittleIntermediate", "rightLittleDistal",
}

func fromVRM1(doc *gltf.Document) (*Model, error) {
	var ext vrm1Extension
	if err := extension(doc, extVRM1, &ext); err != nil {
		return nil, err
	}
	var spring springBoneExtension
	if err := extension(doc, extSpringBone, &spring); err != nil {
		return nil, err
	}

	m := &Model{Version: Version1, Title: ext.Meta.Name, Expressions: []string{}, Bones: []string{}}

	seen := map[string]bool{}
	for _, name := range vrm1PresetOrder {
		if _, ok := ext.Expressions.Preset[name]; ok {
			m.Expressions = appendUnique(m.Expressions, seen, name)
		}
	}
	for _, name := range sortedKeys(ext.Expressions.Custom) {
		m.Expressions = appendUnique(m.Expressions, seen, name)
	}

	seen = map[string]bool{}
	for _, name := range vrm1BoneOrder {
		if _, ok := ext.Humanoid.HumanBones[name]; ok {
			m.Bones = appendUnique(m.Bones, seen, fingerJoint(name, vrm1Joints, vrm1ThumbJoints))
		}
	}
	for _, name := range sortedKeys(ext.Humanoid.HumanBones) {
		if !slices.Contains(vrm1BoneOrder, name) {
			m.Bones = appendUnique(m.Bones, seen, name)
		}
	}

	for _, s := range spring.Springs {
		if len(s.Joints) > 0 {
			m.SpringBones = true
			break
		}
	}
	return m, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
