package force

import (
	"math"
	"time"

	"github.com/matzehuels/orgtower/pkg/dag"
)

// Defaults for [Config].
const (
	DefaultWidth           = 960.0
	DefaultHeight          = 640.0
	DefaultLinkDistance    = 90.0
	DefaultChargeStrength  = -300.0
	DefaultCenterStrength  = 0.1
	DefaultCollidePadding  = 6.0
	DefaultCollideStrength = 0.7
	DefaultVelocityDecay   = 0.4
	DefaultAlphaMin        = 0.001
	DefaultReheatAlpha     = 0.3
	DefaultFitFraction     = 0.8
	DefaultFitDelay        = 1500 * time.Millisecond
	DefaultTickInterval    = 16 * time.Millisecond
	DefaultSeed            = 42

	DefaultRadiusCouncil   = 36.0
	DefaultRadiusCommittee = 26.0
	DefaultRadiusGroup     = 16.0

	// alphaSteps is the number of unit steps a cold start takes to settle.
	alphaSteps = 300
)

// Config holds the simulation parameters. Zero fields take defaults.
type Config struct {
	Width           float64       `toml:"width" json:"width"`
	Height          float64       `toml:"height" json:"height"`
	LinkDistance    float64       `toml:"link_distance" json:"link_distance"`
	ChargeStrength  float64       `toml:"charge_strength" json:"charge_strength"`
	CenterStrength  float64       `toml:"center_strength" json:"center_strength"`
	CollidePadding  float64       `toml:"collide_padding" json:"collide_padding"`
	CollideStrength float64       `toml:"collide_strength" json:"collide_strength"`
	VelocityDecay   float64       `toml:"velocity_decay" json:"velocity_decay"`
	AlphaMin        float64       `toml:"alpha_min" json:"alpha_min"`
	AlphaDecay      float64       `toml:"alpha_decay" json:"alpha_decay"`
	ReheatAlpha     float64       `toml:"reheat_alpha" json:"reheat_alpha"`
	FitFraction     float64       `toml:"fit_fraction" json:"fit_fraction"`
	FitDelay        time.Duration `toml:"fit_delay" json:"fit_delay"`
	TickInterval    time.Duration `toml:"tick_interval" json:"tick_interval"`
	Seed            int64         `toml:"seed" json:"seed"`

	RadiusCouncil   float64 `toml:"radius_council" json:"radius_council"`
	RadiusCommittee float64 `toml:"radius_committee" json:"radius_committee"`
	RadiusGroup     float64 `toml:"radius_group" json:"radius_group"`
}

// SetDefaults fills zero fields. ChargeStrength keeps any non-zero value,
// so attraction (positive charge) is possible.
func (c *Config) SetDefaults() {
	setDefault(&c.Width, DefaultWidth)
	setDefault(&c.Height, DefaultHeight)
	setDefault(&c.LinkDistance, DefaultLinkDistance)
	if c.ChargeStrength == 0 {
		c.ChargeStrength = DefaultChargeStrength
	}
	setDefault(&c.CenterStrength, DefaultCenterStrength)
	setDefault(&c.CollidePadding, DefaultCollidePadding)
	setDefault(&c.CollideStrength, DefaultCollideStrength)
	setDefault(&c.VelocityDecay, DefaultVelocityDecay)
	setDefault(&c.AlphaMin, DefaultAlphaMin)
	if c.AlphaDecay <= 0 {
		c.AlphaDecay = 1 - math.Pow(c.AlphaMin, 1.0/alphaSteps)
	}
	setDefault(&c.ReheatAlpha, DefaultReheatAlpha)
	setDefault(&c.FitFraction, DefaultFitFraction)
	if c.FitDelay <= 0 {
		c.FitDelay = DefaultFitDelay
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	setDefault(&c.RadiusCouncil, DefaultRadiusCouncil)
	setDefault(&c.RadiusCommittee, DefaultRadiusCommittee)
	setDefault(&c.RadiusGroup, DefaultRadiusGroup)
}

// Radius returns the visual radius of a node kind.
func (c Config) Radius(k dag.Kind) float64 {
	switch k {
	case dag.KindCouncil:
		return c.RadiusCouncil
	case dag.KindCommittee:
		return c.RadiusCommittee
	default:
		return c.RadiusGroup
	}
}

func setDefault(v *float64, d float64) {
	if *v <= 0 {
		*v = d
	}
}
