package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/debug"
	"github.com/rhuss/vrmaction/pkg/observability"
	"github.com/rhuss/vrmaction/pkg/storage"
	"github.com/rhuss/vrmaction/pkg/templates"
)

// Engine serves action requests. It applies request defaults, validates
// input, composes actions and records them in the action history.
type Engine struct {
	store storage.Store
	cfg   Config
}

// New creates an Engine. The store can be nil, which disables the action
// history.
func New(store storage.Store, cfg Config) *Engine {
	return &Engine{
		store: store,
		cfg:   cfg.withDefaults(),
	}
}

// GenerateRequest asks for one action. Nil Intensity and Duration select
// the configured defaults.
type GenerateRequest struct {
	ActionType   string
	Intensity    *float64
	Duration     *float64
	Capabilities *api.Capabilities
}

// Generated is a composed action and, when the history is enabled, the
// ID it was stored under.
type Generated struct {
	ID     string
	Action api.ActionRecord
}

// Config returns the effective engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// HistoryEnabled reports whether generated actions are recorded.
func (e *Engine) HistoryEnabled() bool {
	return e.store != nil
}

// Capabilities builds a capability descriptor. Nil lists select the
// standard expression and bone sets. Spring bones are always reported.
func (e *Engine) Capabilities(expressions, bones []string) *api.Capabilities {
	if expressions == nil {
		expressions = api.StandardExpressions
	}
	if bones == nil {
		bones = api.StandardBones
	}
	return api.NewCapabilities(expressions, bones, true)
}

// ListActionTypes returns the built-in action types in stable order.
func (e *Engine) ListActionTypes() []string {
	return templates.Names()
}

// Generate composes one action for the model described by the request.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest) (*Generated, error) {
	intensity := e.cfg.DefaultIntensity
	if req.Intensity != nil {
		intensity = *req.Intensity
	}
	duration := e.cfg.DefaultDuration
	if req.Duration != nil {
		duration = *req.Duration
	}

	if apiErr := api.ValidateActionType("action_type", req.ActionType); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := api.ValidateIntensity("intensity", intensity); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := api.ValidateDuration("duration", duration); apiErr != nil {
		return nil, apiErr
	}

	return e.generate(ctx, req.ActionType, intensity, duration, req.Capabilities)
}

// Sequence composes one action per action type, in input order, using the
// sequence intensity and duration. Any failure aborts the whole sequence.
func (e *Engine) Sequence(ctx context.Context, actionTypes []string, caps *api.Capabilities) ([]*Generated, error) {
	out := make([]*Generated, 0, len(actionTypes))
	for i, actionType := range actionTypes {
		param := fmt.Sprintf("action_names[%d]", i)
		if apiErr := api.ValidateActionType(param, actionType); apiErr != nil {
			return nil, apiErr
		}
		g, err := e.generate(ctx, actionType, e.cfg.SequenceIntensity, e.cfg.SequenceDuration, caps)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// CustomAction assembles a caller-supplied action without any resolution.
// Nil Duration selects the default duration.
func (e *Engine) CustomAction(name string, expressions []api.ExpressionEntry, bones []api.BoneTransform, duration *float64, loop bool) (api.ActionRecord, error) {
	d := e.cfg.DefaultDuration
	if duration != nil {
		d = *duration
	}
	if strings.TrimSpace(name) == "" {
		return api.ActionRecord{}, api.NewValidationError(api.CodeMissingField, "name", "name is required")
	}
	if apiErr := api.ValidateDuration("duration", d); apiErr != nil {
		return api.ActionRecord{}, apiErr
	}
	if expressions == nil {
		expressions = []api.ExpressionEntry{}
	}
	if bones == nil {
		bones = []api.BoneTransform{}
	}
	return api.ActionRecord{
		Name:           name,
		Duration:       d,
		Expressions:    expressions,
		BoneTransforms: bones,
		Loop:           loop,
	}, nil
}

// GetAction returns a stored action of the current tenant.
func (e *Engine) GetAction(ctx context.Context, id string) (*api.StoredAction, error) {
	if e.store == nil {
		return nil, api.NewInvalidRequestError("id", "action history is disabled")
	}
	if !api.ValidateActionID(id) {
		return nil, api.NewInvalidRequestError("id", "malformed action id")
	}
	action, err := e.store.GetAction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, api.NewNotFoundError(fmt.Sprintf("action %q not found", id))
	}
	return action, err
}

// ListActions returns a page of the current tenant's action history.
func (e *Engine) ListActions(ctx context.Context, opts storage.ListOptions) (*api.ActionList, error) {
	if e.store == nil {
		return nil, api.NewInvalidRequestError("", "action history is disabled")
	}
	if opts.Order != "" && opts.Order != "asc" && opts.Order != "desc" {
		return nil, api.NewInvalidRequestError("order", `order must be "asc" or "desc"`)
	}
	if opts.After != "" && opts.Before != "" {
		return nil, api.NewInvalidRequestError("before", "after and before are mutually exclusive")
	}
	return e.store.ListActions(ctx, opts.Normalize())
}

func (e *Engine) generate(ctx context.Context, actionType string, intensity, duration float64, caps *api.Capabilities) (*Generated, error) {
	rec, res, err := compose(actionType, intensity, duration, caps)
	if err != nil {
		return nil, err
	}
	observe(actionType, res)

	g := &Generated{Action: rec}
	if e.store == nil {
		return g, nil
	}

	stored := &api.StoredAction{
		ID:         api.NewActionID(),
		ActionType: actionType,
		Intensity:  intensity,
		Action:     rec,
		CreatedAt:  time.Now().Unix(),
	}
	// The history is best effort; a failed write never fails the request.
	if err := e.store.SaveAction(ctx, stored); err != nil {
		slog.Warn("failed to record action", "action_type", actionType, "error", err)
		return g, nil
	}
	g.ID = stored.ID
	debug.Log("storage", "action recorded", "id", stored.ID, "tenant", storage.GetTenant(ctx))
	return g, nil
}

func observe(actionType string, res Resolution) {
	source := observability.SourceTemplate
	if res.Synthesized {
		source = observability.SourceFallback
	}
	observability.ActionsComposedTotal.WithLabelValues(source).Inc()

	if n := len(res.DroppedExpressions); n > 0 {
		observability.UnresolvedTotal.WithLabelValues(observability.KindExpression).Add(float64(n))
	}
	if n := len(res.DroppedBones); n > 0 {
		observability.UnresolvedTotal.WithLabelValues(observability.KindBone).Add(float64(n))
	}

	debug.Log("engine", "action composed",
		"action_type", actionType,
		"source", source,
		"dropped_expressions", res.DroppedExpressions,
		"dropped_bones", res.DroppedBones,
	)
}
