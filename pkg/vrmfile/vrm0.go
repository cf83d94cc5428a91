package vrmfile

import "github.com/qmuntal/gltf"

type vrm0Extension struct {
	Meta struct {
		Title string `json:"title"`
	} `json:"meta"`
	Humanoid struct {
		HumanBones []struct {
			Bone string `json:"bone"`
			Node int    `json:"node"`
		} `json:"humanBones"`
	} `json:"humanoid"`
	BlendShapeMaster struct {
		BlendShapeGroups []struct {
			Name       string `json:"name"`
			PresetName string `json:"presetName"`
		} `json:"blendShapeGroups"`
	} `json:"blendShapeMaster"`
	SecondaryAnimation struct {
		BoneGroups []struct {
			Bones []int `json:"bones"`
		} `json:"boneGroups"`
	} `json:"secondaryAnimation"`
}

// vrm0Joints maps VRM 0.x finger joint names to joint numbers.
var vrm0Joints = map[string]string{
	"Proximal":     "1",
	"Intermediate": "2",
	"Distal":       "3",
}

func fromVRM0(doc *gltf.Document) (*Model, error) {
	var ext vrm0Extension
	if err := extension(doc, extVRM0, &ext); err != nil {
		return nil, err
	}

	m := &Model{Version: Version0, Title: ext.Meta.Title, Expressions: []string{}, Bones: []string{}}

	seen := map[string]bool{}
	for _, g := range ext.BlendShapeMaster.BlendShapeGroups {
		name := g.PresetName
		if name == "" || name == "unknown" {
			name = g.Name
		}
		m.Expressions = appendUnique(m.Expressions, seen, name)
	}

	seen = map[string]bool{}
	for _, b := range ext.Humanoid.HumanBones {
		m.Bones = appendUnique(m.Bones, seen, fingerJoint(b.Bone, vrm0Joints, nil))
	}

	for _, g := range ext.SecondaryAnimation.BoneGroups {
		if len(g.Bones) > 0 {
			m.SpringBones = true
			break
		}
	}
	return m, nil
}
