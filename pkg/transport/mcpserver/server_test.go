package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/engine"
	"github.com/rhuss/vrmaction/pkg/storage/memory"
	"github.com/rhuss/vrmaction/pkg/templates"
)

func newEngine(history bool) *engine.Engine {
	if !history {
		return engine.New(nil, engine.Config{})
	}
	return engine.New(memory.New(100), engine.Config{})
}

// connect runs the server over in-memory transports and returns the client
// side of the session.
func connect(t *testing.T, eng *engine.Engine) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := New(eng, Options{Version: "test"})
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() {
		cs.Close()
		ss.Wait()
	})
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s) error: %v", name, err)
	}
	return res
}

// decode unmarshals the structured content of a successful result.
func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	var out T
	if res.IsError {
		t.Fatalf("tool returned error: %s", resultText(res))
	}
	data, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}

func resultText(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func assertToolError(t *testing.T, res *mcp.CallToolResult, want string) {
	t.Helper()
	if !res.IsError {
		t.Fatalf("expected tool error containing %q, got success", want)
	}
	if text := resultText(res); !strings.Contains(text, want) {
		t.Errorf("error text = %q, want it to contain %q", text, want)
	}
}

func standardCaps() map[string]any {
	return map[string]any{
		"expressions": api.StandardExpressions,
		"bones":       api.StandardBones,
	}
}

func TestListTools(t *testing.T) {
	cs := connect(t, newEngine(true))

	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools error: %v", err)
	}

	got := map[string]bool{}
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, name := range []string{
		ToolGetModelCapabilities, ToolGenerateAction, ToolListAvailable,
		ToolCreateCustomAction, ToolGetActionSequence, ToolGetAction, ToolListActions,
	} {
		if !got[name] {
			t.Errorf("tool %q not registered", name)
		}
	}
	if len(res.Tools) != 7 {
		t.Errorf("tool count = %d, want 7", len(res.Tools))
	}
}

func TestGenerateDescriptionMatchesFallback(t *testing.T) {
	cs := connect(t, newEngine(false))

	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools error: %v", err)
	}
	var desc string
	for _, tool := range res.Tools {
		if tool.Name == ToolGenerateAction {
			desc = tool.Description
		}
	}

	caps := api.StandardCapabilities()
	for _, kw := range []string{"wave", "hello", "dance", "move", "point", "indicate"} {
		if !strings.Contains(desc, kw) {
			t.Errorf("description does not mention fallback keyword %q", kw)
		}
		if len(engine.Synthesize(kw, 1, caps)) == 0 {
			t.Errorf("keyword %q synthesizes no transforms", kw)
		}
	}
	if got := engine.Synthesize("nod", 1, caps); len(got) != 0 {
		t.Errorf("Synthesize(nod) = %v, want no transforms", got)
	}
	if strings.Contains(desc, "nod") {
		t.Error("description advertises a nod fallback that does not exist")
	}
}

func TestGetModelCapabilities(t *testing.T) {
	cs := connect(t, newEngine(false))

	t.Run("defaults", func(t *testing.T) {
		spec := decode[api.CapabilitiesSpec](t, call(t, cs, ToolGetModelCapabilities, map[string]any{}))
		if diff := cmp.Diff(api.StandardExpressions, spec.Expressions); diff != "" {
			t.Errorf("expressions mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(api.StandardBones, spec.Bones); diff != "" {
			t.Errorf("bones mismatch (-want +got):\n%s", diff)
		}
		if !spec.HasSpringBones {
			t.Error("has_spring_bones = false, want true")
		}
		if spec.HasFingerBones {
			t.Error("has_finger_bones = true for the standard set, want false")
		}
	})

	t.Run("explicit lists", func(t *testing.T) {
		spec := decode[api.CapabilitiesSpec](t, call(t, cs, ToolGetModelCapabilities, map[string]any{
			"expressions": []string{"joy"},
			"bones":       []string{"rightHand", "rightThumb1", "leftToes"},
		}))
		if diff := cmp.Diff([]string{"joy"}, spec.Expressions); diff != "" {
			t.Errorf("expressions mismatch (-want +got):\n%s", diff)
		}
		if !spec.HasFingerBones || !spec.HasToeBones {
			t.Errorf("derived flags = finger %v, toe %v, want both true", spec.HasFingerBones, spec.HasToeBones)
		}
	})
}

func TestGenerateAction(t *testing.T) {
	cs := connect(t, newEngine(true))

	res := call(t, cs, ToolGenerateAction, map[string]any{
		"action_type":        "wave_hello",
		"intensity":          1.0,
		"model_capabilities": standardCaps(),
	})
	rec := decode[api.ActionRecord](t, res)

	if rec.Name != "wave_hello_1.0" {
		t.Errorf("name = %q, want %q", rec.Name, "wave_hello_1.0")
	}
	if rec.Duration != 2.0 {
		t.Errorf("duration = %v, want default 2.0", rec.Duration)
	}
	if rec.Loop {
		t.Error("loop = true, want false for wave_hello")
	}
	if len(rec.Expressions) != 1 || rec.Expressions[0].Name != "happy" {
		t.Errorf("expressions = %+v, want one happy entry", rec.Expressions)
	}
	if len(rec.BoneTransforms) != 2 {
		t.Errorf("bone transforms = %d, want 2", len(rec.BoneTransforms))
	}

	id, _ := res.Meta[MetaActionID].(string)
	if !api.ValidateActionID(id) {
		t.Fatalf("_meta[%s] = %q, want a valid action id", MetaActionID, id)
	}

	stored := decode[api.StoredAction](t, call(t, cs, ToolGetAction, map[string]any{"id": id}))
	if stored.ID != id || stored.ActionType != "wave_hello" || stored.Intensity != 1.0 {
		t.Errorf("stored = %+v, want id %s wave_hello at 1.0", stored, id)
	}
	if diff := cmp.Diff(rec, stored.Action); diff != "" {
		t.Errorf("stored action mismatch (-generated +stored):\n%s", diff)
	}
}

func TestGenerateActionFallback(t *testing.T) {
	cs := connect(t, newEngine(false))

	res := call(t, cs, ToolGenerateAction, map[string]any{
		"action_type":        "unknown_action_xyz_dance",
		"model_capabilities": standardCaps(),
	})
	rec := decode[api.ActionRecord](t, res)

	if rec.Name != "unknown_action_xyz_dance_0.5" {
		t.Errorf("name = %q, want %q", rec.Name, "unknown_action_xyz_dance_0.5")
	}
	if len(rec.Expressions) != 0 {
		t.Errorf("expressions = %+v, want none", rec.Expressions)
	}
	bones := make([]string, 0, len(rec.BoneTransforms))
	for _, b := range rec.BoneTransforms {
		bones = append(bones, b.BoneName)
	}
	if diff := cmp.Diff([]string{"spine", "rightUpperArm", "leftUpperArm"}, bones); diff != "" {
		t.Errorf("synthesized bones mismatch (-want +got):\n%s", diff)
	}
	if _, ok := res.Meta[MetaActionID]; ok {
		t.Error("_meta carries an action id with history disabled")
	}
}

func TestGenerateActionErrors(t *testing.T) {
	cs := connect(t, newEngine(true))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "missing capabilities",
			args: map[string]any{"action_type": "wave_hello"},
			want: "model_capabilities",
		},
		{
			name: "intensity out of range",
			args: map[string]any{"action_type": "wave_hello", "intensity": 1.5, "model_capabilities": standardCaps()},
			want: "intensity",
		},
		{
			name: "non-positive duration",
			args: map[string]any{"action_type": "wave_hello", "duration": 0, "model_capabilities": standardCaps()},
			want: "duration",
		},
		{
			name: "empty action type",
			args: map[string]any{"action_type": "", "model_capabilities": standardCaps()},
			want: "action_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertToolError(t, call(t, cs, ToolGenerateAction, tt.args), tt.want)
		})
	}
}

func TestListAvailableActions(t *testing.T) {
	cs := connect(t, newEngine(false))

	out := decode[ActionTypesOutput](t, call(t, cs, ToolListAvailable, map[string]any{}))
	if diff := cmp.Diff(templates.Names(), out.ActionTypes); diff != "" {
		t.Errorf("action types mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateCustomAction(t *testing.T) {
	cs := connect(t, newEngine(true))

	t.Run("passthrough", func(t *testing.T) {
		rec := decode[api.ActionRecord](t, call(t, cs, ToolCreateCustomAction, map[string]any{
			"name":        "my_pose",
			"expressions": []map[string]any{{"name": "fun", "value": 0.4}},
			"bone_transforms": []map[string]any{
				{"bone_name": "J_Bip_R_UpperArm", "rotation": []float64{0.1, 0.2, 0.3}, "position": []float64{0, 1, 0}},
			},
			"duration": 3.5,
			"loop":     true,
		}))

		if rec.Name != "my_pose" || rec.Duration != 3.5 || !rec.Loop {
			t.Errorf("record = %+v, want my_pose, 3.5s, loop", rec)
		}
		if len(rec.Expressions) != 1 || rec.Expressions[0] != (api.ExpressionEntry{Name: "fun", Value: 0.4}) {
			t.Errorf("expressions = %+v, want fun at 0.4", rec.Expressions)
		}
		if len(rec.BoneTransforms) != 1 {
			t.Fatalf("bone transforms = %d, want 1", len(rec.BoneTransforms))
		}
		bt := rec.BoneTransforms[0]
		if bt.BoneName != "J_Bip_R_UpperArm" || bt.Position == nil || bt.Position[1] != 1 {
			t.Errorf("bone transform = %+v, want unmodified J_Bip_R_UpperArm with position", bt)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		rec := decode[api.ActionRecord](t, call(t, cs, ToolCreateCustomAction, map[string]any{"name": "still"}))
		if rec.Duration != 2.0 || rec.Loop {
			t.Errorf("record = %+v, want 2.0s without loop", rec)
		}
		if rec.Expressions == nil || rec.BoneTransforms == nil {
			t.Errorf("record = %+v, want empty lists instead of null", rec)
		}
	})

	t.Run("invalid rotation", func(t *testing.T) {
		res := call(t, cs, ToolCreateCustomAction, map[string]any{
			"name":            "broken",
			"bone_transforms": []map[string]any{{"bone_name": "head", "rotation": []float64{0, 1}}},
		})
		assertToolError(t, res, "bone_transforms[0].rotation")
	})

	t.Run("unknown expression field", func(t *testing.T) {
		res := call(t, cs, ToolCreateCustomAction, map[string]any{
			"name":        "broken",
			"expressions": []map[string]any{{"name": "happy", "value": 0.5, "weight": 1}},
		})
		assertToolError(t, res, "expressions[0]")
	})

	t.Run("missing name", func(t *testing.T) {
		assertToolError(t, call(t, cs, ToolCreateCustomAction, map[string]any{"name": " "}), "name")
	})
}

func TestGetActionSequence(t *testing.T) {
	cs := connect(t, newEngine(true))

	res := call(t, cs, ToolGetActionSequence, map[string]any{
		"action_names":       []string{"bow", "clap", "happy_dance"},
		"model_capabilities": standardCaps(),
	})
	out := decode[SequenceOutput](t, res)

	var names []string
	for _, a := range out.Actions {
		names = append(names, a.Name)
		if a.Duration != 2.0 {
			t.Errorf("%s duration = %v, want 2.0", a.Name, a.Duration)
		}
	}
	if diff := cmp.Diff([]string{"bow_0.7", "clap_0.7", "happy_dance_0.7"}, names); diff != "" {
		t.Errorf("sequence names mismatch (-want +got):\n%s", diff)
	}

	ids, _ := res.Meta[MetaActionIDs].([]any)
	if len(ids) != 3 {
		t.Errorf("_meta[%s] = %v, want 3 ids", MetaActionIDs, res.Meta[MetaActionIDs])
	}

	t.Run("empty", func(t *testing.T) {
		out := decode[SequenceOutput](t, call(t, cs, ToolGetActionSequence, map[string]any{"action_names": []string{}}))
		if len(out.Actions) != 0 {
			t.Errorf("actions = %d, want 0", len(out.Actions))
		}
	})

	t.Run("missing capabilities", func(t *testing.T) {
		res := call(t, cs, ToolGetActionSequence, map[string]any{"action_names": []string{"bow"}})
		assertToolError(t, res, "model_capabilities")
	})

	t.Run("invalid entry", func(t *testing.T) {
		res := call(t, cs, ToolGetActionSequence, map[string]any{
			"action_names":       []string{"bow", ""},
			"model_capabilities": standardCaps(),
		})
		assertToolError(t, res, "action_names[1]")
	})
}

func TestActionHistory(t *testing.T) {
	cs := connect(t, newEngine(true))

	for _, action := range []string{"bow", "clap", "bow"} {
		call(t, cs, ToolGenerateAction, map[string]any{"action_type": action, "model_capabilities": standardCaps()})
	}

	all := decode[api.ActionList](t, call(t, cs, ToolListActions, map[string]any{}))
	if len(all.Data) != 3 {
		t.Fatalf("list = %d actions, want 3", len(all.Data))
	}

	bows := decode[api.ActionList](t, call(t, cs, ToolListActions, map[string]any{"action_type": "bow"}))
	if len(bows.Data) != 2 {
		t.Errorf("bow filter = %d actions, want 2", len(bows.Data))
	}

	page := decode[api.ActionList](t, call(t, cs, ToolListActions, map[string]any{"limit": 2, "order": "asc"}))
	if len(page.Data) != 2 || !page.HasMore {
		t.Errorf("page = %d actions, has_more %v, want 2 and true", len(page.Data), page.HasMore)
	}

	t.Run("invalid order", func(t *testing.T) {
		assertToolError(t, call(t, cs, ToolListActions, map[string]any{"order": "sideways"}), "order")
	})

	t.Run("unknown id", func(t *testing.T) {
		assertToolError(t, call(t, cs, ToolGetAction, map[string]any{"id": api.NewActionID()}), "not found")
	})

	t.Run("malformed id", func(t *testing.T) {
		assertToolError(t, call(t, cs, ToolGetAction, map[string]any{"id": "nope"}), "malformed")
	})
}

func TestActionHistoryDisabled(t *testing.T) {
	cs := connect(t, newEngine(false))

	assertToolError(t, call(t, cs, ToolGetAction, map[string]any{"id": api.NewActionID()}), "history is disabled")
	assertToolError(t, call(t, cs, ToolListActions, map[string]any{}), "history is disabled")
}
