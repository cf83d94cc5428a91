package mapping

import "slices"

// ExpressionSet reports which expressions a model exposes.
type ExpressionSet interface {
	HasExpression(name string) bool
}

// expressionSynonyms lists fallback names for canonical expressions, in
// priority order.
var expressionSynonyms = map[string][]string{
	"happy":      {"joy", "smile", "pleased", "cheerful"},
	"sad":        {"sorrow", "cry", "depressed", "down"},
	"angry":      {"mad", "irritated", "upset", "furious"},
	"surprised":  {"shock", "amazed", "wow", "astonished"},
	"neutral":    {"default", "rest", "normal"},
	"blink":      {"blink_both", "eye_close"},
	"look_left":  {"eye_left", "gaze_left"},
	"look_right": {"eye_right", "gaze_right"},
	"look_up":    {"eye_up", "gaze_up"},
	"look_down":  {"eye_down", "gaze_down"},
}

// ExpressionSynonyms returns the fallback names for a canonical expression
// in priority order, or nil when the expression has none.
func ExpressionSynonyms(name string) []string {
	return slices.Clone(expressionSynonyms[name])
}

// ResolveExpression maps a desired expression to one the model exposes.
// An exact match always wins; otherwise the first available synonym is
// returned. ok is false when neither the name nor any synonym is available.
func ResolveExpression(desired string, available ExpressionSet) (name string, ok bool) {
	if available.HasExpression(desired) {
		return desired, true
	}
	for _, alt := range expressionSynonyms[desired] {
		if available.HasExpression(alt) {
			return alt, true
		}
	}
	return "", false
}
