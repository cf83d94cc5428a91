package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/engine"
	"github.com/rhuss/vrmaction/pkg/storage"
)

// Tool names.
const (
	ToolGetModelCapabilities = "get_model_capabilities"
	ToolGenerateAction       = "generate_vrm_action"
	ToolListAvailable        = "list_available_actions"
	ToolCreateCustomAction   = "create_custom_action"
	ToolGetActionSequence    = "get_action_sequence"
	ToolGetAction            = "get_action"
	ToolListActions          = "list_actions"
)

// CapabilitiesInput selects the names reported by get_model_capabilities.
type CapabilitiesInput struct {
	Expressions []string `json:"expressions,omitempty" jsonschema:"expression names the model exposes; omit for the standard set"`
	Bones       []string `json:"bones,omitempty" jsonschema:"bone names the model exposes; omit for the standard humanoid set"`
}

// GenerateInput is the argument of generate_vrm_action.
type GenerateInput struct {
	ActionType        string                `json:"action_type" jsonschema:"action to generate, e.g. wave_hello or a free-form description such as happy_dance"`
	Intensity         *float64              `json:"intensity,omitempty" jsonschema:"action intensity between 0 and 1, default 0.5"`
	Duration          *float64              `json:"duration,omitempty" jsonschema:"duration in seconds, default 2.0"`
	ModelCapabilities *api.CapabilitiesSpec `json:"model_capabilities,omitempty" jsonschema:"expressions and bones of the target model (required)"`
}

// ActionTypesOutput is the result of list_available_actions.
type ActionTypesOutput struct {
	ActionTypes []string `json:"action_types" jsonschema:"built-in action types in stable order"`
}

// CustomActionInput is the argument of create_custom_action. Expressions
// and bone transforms are loosely shaped objects, validated on receipt.
type CustomActionInput struct {
	Name           string           `json:"name" jsonschema:"name of the action"`
	Expressions    []map[string]any `json:"expressions,omitempty" jsonschema:"objects with name and value (0 to 1)"`
	BoneTransforms []map[string]any `json:"bone_transforms,omitempty" jsonschema:"objects with bone_name, rotation [x, y, z] and optional position [x, y, z]"`
	Duration       *float64         `json:"duration,omitempty" jsonschema:"duration in seconds, default 2.0"`
	Loop           bool             `json:"loop,omitempty" jsonschema:"whether the action should loop"`
}

// SequenceInput is the argument of get_action_sequence.
type SequenceInput struct {
	ActionNames       []string              `json:"action_names" jsonschema:"action types to compose, in playback order"`
	ModelCapabilities *api.CapabilitiesSpec `json:"model_capabilities,omitempty" jsonschema:"expressions and bones of the target model; required unless action_names is empty"`
}

// SequenceOutput is the result of get_action_sequence.
type SequenceOutput struct {
	Actions []api.ActionRecord `json:"actions" jsonschema:"composed actions in input order"`
}

// GetActionInput is the argument of get_action.
type GetActionInput struct {
	ID string `json:"id" jsonschema:"history id returned in _meta of generate_vrm_action"`
}

// ListActionsInput is the argument of list_actions.
type ListActionsInput struct {
	Limit      int    `json:"limit,omitempty" jsonschema:"page size, 1 to 100, default 20"`
	Order      string `json:"order,omitempty" jsonschema:"asc or desc by creation time, default desc"`
	After      string `json:"after,omitempty" jsonschema:"return actions after this id"`
	Before     string `json:"before,omitempty" jsonschema:"return actions before this id"`
	ActionType string `json:"action_type,omitempty" jsonschema:"only return actions of this type"`
}

type tools struct {
	eng *engine.Engine
}

func registerTools(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolGetModelCapabilities,
		Description: "Describe the expressions and bones of a VRM model. Omitted lists are filled with the standard VRM sets.",
	}, t.getModelCapabilities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolGenerateAction,
		Description: "Generate a VRM action adapted to the model's capabilities. Unknown action types containing wave/hello, dance/move or point/indicate get a synthesized arm or spine pose; other unknown types produce an action with no transforms.",
	}, t.generateAction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolListAvailable,
		Description: "List the built-in action types.",
	}, t.listAvailableActions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolCreateCustomAction,
		Description: "Assemble an action from explicit expressions and bone transforms. Names are used as given, without adaptation.",
	}, t.createCustomAction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolGetActionSequence,
		Description: "Generate a sequence of actions at intensity 0.7 and 2 seconds each.",
	}, t.getActionSequence)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolGetAction,
		Description: "Fetch a previously generated action from the action history.",
	}, t.getAction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolListActions,
		Description: "Page through the action history, newest first by default.",
	}, t.listActions)
}

func (t *tools) getModelCapabilities(_ context.Context, _ *mcp.CallToolRequest, in CapabilitiesInput) (*mcp.CallToolResult, api.CapabilitiesSpec, error) {
	return nil, t.eng.Capabilities(in.Expressions, in.Bones).Spec(), nil
}

func (t *tools) generateAction(ctx context.Context, _ *mcp.CallToolRequest, in GenerateInput) (*mcp.CallToolResult, api.ActionRecord, error) {
	g, err := t.eng.Generate(ctx, engine.GenerateRequest{
		ActionType:   in.ActionType,
		Intensity:    in.Intensity,
		Duration:     in.Duration,
		Capabilities: capabilities(in.ModelCapabilities),
	})
	if err != nil {
		return nil, api.ActionRecord{}, toolError(err)
	}
	if g.ID == "" {
		return nil, g.Action, nil
	}
	return &mcp.CallToolResult{Meta: mcp.Meta{MetaActionID: g.ID}}, g.Action, nil
}

func (t *tools) listAvailableActions(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ActionTypesOutput, error) {
	return nil, ActionTypesOutput{ActionTypes: t.eng.ListActionTypes()}, nil
}

func (t *tools) createCustomAction(_ context.Context, _ *mcp.CallToolRequest, in CustomActionInput) (*mcp.CallToolResult, api.ActionRecord, error) {
	expressions, apiErr := api.ParseExpressions(in.Expressions)
	if apiErr != nil {
		return nil, api.ActionRecord{}, apiErr
	}
	bones, apiErr := api.ParseBoneTransforms(in.BoneTransforms)
	if apiErr != nil {
		return nil, api.ActionRecord{}, apiErr
	}
	rec, err := t.eng.CustomAction(in.Name, expressions, bones, in.Duration, in.Loop)
	if err != nil {
		return nil, api.ActionRecord{}, toolError(err)
	}
	return nil, rec, nil
}

func (t *tools) getActionSequence(ctx context.Context, _ *mcp.CallToolRequest, in SequenceInput) (*mcp.CallToolResult, SequenceOutput, error) {
	generated, err := t.eng.Sequence(ctx, in.ActionNames, capabilities(in.ModelCapabilities))
	if err != nil {
		return nil, SequenceOutput{}, toolError(err)
	}

	out := SequenceOutput{Actions: make([]api.ActionRecord, 0, len(generated))}
	var ids []string
	for _, g := range generated {
		out.Actions = append(out.Actions, g.Action)
		if g.ID != "" {
			ids = append(ids, g.ID)
		}
	}
	if len(ids) == 0 {
		return nil, out, nil
	}
	return &mcp.CallToolResult{Meta: mcp.Meta{MetaActionIDs: ids}}, out, nil
}

func (t *tools) getAction(ctx context.Context, _ *mcp.CallToolRequest, in GetActionInput) (*mcp.CallToolResult, api.StoredAction, error) {
	action, err := t.eng.GetAction(ctx, in.ID)
	if err != nil {
		return nil, api.StoredAction{}, toolError(err)
	}
	return nil, *action, nil
}

func (t *tools) listActions(ctx context.Context, _ *mcp.CallToolRequest, in ListActionsInput) (*mcp.CallToolResult, api.ActionList, error) {
	list, err := t.eng.ListActions(ctx, storage.ListOptions{
		After:      in.After,
		Before:     in.Before,
		Limit:      in.Limit,
		ActionType: in.ActionType,
		Order:      in.Order,
	})
	if err != nil {
		return nil, api.ActionList{}, toolError(err)
	}
	return nil, *list, nil
}

// capabilities converts the optional wire descriptor. A nil spec stays nil
// so the engine can report missing capabilities.
func capabilities(spec *api.CapabilitiesSpec) *api.Capabilities {
	if spec == nil {
		return nil
	}
	return spec.Capabilities()
}
