package engineer

import (
	"math"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
)

const (
	smoothnessKeep     = 0.7
	aggressionKeep     = 0.9
	trailKeep          = 0.95
	trailDecay         = 0.98
	throttleKeep       = 0.9
	aggressionMaxG     = 2.5
	trailBrakeLevel    = 0.1
	trailSteerLevel    = 0.05
	throttleJerkFactor = 200
)

// DrivingStyle holds exponentially smoothed style metrics (0..100).
// Unlike the window counters these persist for the whole session.
type DrivingStyle struct {
	Smoothness      float32 `json:"smoothness"`
	Aggression      float32 `json:"aggression"`
	TrailBraking    float32 `json:"trailBraking"`
	ThrottleControl float32 `json:"throttleControl"`

	prev    inputSample
	hasPrev bool
}

func newDrivingStyle() DrivingStyle {
	return DrivingStyle{Smoothness: 100, ThrottleControl: 100}
}

func (d *DrivingStyle) update(p *model.PhysicsFrame) {
	cur := inputSample{gas: p.Gas, brake: p.Brake, steer: p.SteerAngle}
	if d.hasPrev {
		dGas := abs32(cur.gas - d.prev.gas)
		dBrake := abs32(cur.brake - d.prev.brake)
		steadiness := clamp(100-(dGas+dBrake)*100, 0, 100)
		d.Smoothness = smoothnessKeep*d.Smoothness + (1-smoothnessKeep)*steadiness
		throttle := clamp(100-dGas*throttleJerkFactor, 0, 100)
		d.ThrottleControl = throttleKeep*d.ThrottleControl + (1-throttleKeep)*throttle
	}
	d.prev, d.hasPrev = cur, true

	combined := float32(math.Hypot(float64(p.LatG()), float64(p.LonG())))
	d.Aggression = aggressionKeep*d.Aggression +
		(1-aggressionKeep)*clamp(combined/aggressionMaxG*100, 0, 100)

	if p.Brake > trailBrakeLevel && abs32(p.SteerAngle) > trailSteerLevel {
		d.TrailBraking = trailKeep*d.TrailBraking + (1-trailKeep)*100
	} else {
		d.TrailBraking *= trailDecay
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, low, high float32) float32 {
	if math.IsNaN(float64(v)) {
		return low
	}
	return max(low, min(v, high))
}
