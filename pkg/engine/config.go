package engine

// Config holds request defaults for the engine. Zero values select the
// defaults of the MCP tool surface.
type Config struct {
	// DefaultIntensity applies when a generate request omits intensity.
	DefaultIntensity float64

	// DefaultDuration applies when a request omits duration.
	DefaultDuration float64

	// SequenceIntensity is used for every action of a sequence.
	SequenceIntensity float64

	// SequenceDuration is used for every action of a sequence.
	SequenceDuration float64
}

func (c Config) withDefaults() Config {
	if c.DefaultIntensity <= 0 {
		c.DefaultIntensity = 0.5
	}
	if c.DefaultDuration <= 0 {
		c.DefaultDuration = 2.0
	}
	if c.SequenceIntensity <= 0 {
		c.SequenceIntensity = 0.7
	}
	if c.SequenceDuration <= 0 {
		c.SequenceDuration = 2.0
	}
	return c
}
