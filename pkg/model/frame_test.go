package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinite(t *testing.T) {
	tests := []struct {
		name string
		v    float32
		want bool
	}{
		{name: "zero", v: 0, want: true},
		{name: "negative", v: -12.5, want: true},
		{name: "max", v: math.MaxFloat32, want: true},
		{name: "NaN", v: float32(math.NaN()), want: false},
		{name: "+Inf", v: float32(math.Inf(1)), want: false},
		{name: "-Inf", v: float32(math.Inf(-1)), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Finite(tt.v))
		})
	}
}

func TestPhysicsFrame_HoldFinite(t *testing.T) {
	nan := float32(math.NaN())
	last := PhysicsFrame{
		SpeedKmh:       120,
		AccG:           [3]float32{1, 0, -0.5},
		WheelsPressure: PerWheel{27, 27.5, 28, 28.5},
		BrakeTemp:      PerWheel{300, 310, 200, 210},
	}
	p := PhysicsFrame{
		Gear:           4,
		SpeedKmh:       nan,
		AccG:           [3]float32{float32(math.Inf(1)), 0, -0.7},
		WheelsPressure: PerWheel{26, nan, 28, nan},
		BrakeTemp:      PerWheel{320, 330, float32(math.Inf(-1)), 220},
	}
	assert.Equal(t, 5, p.HoldFinite(&last))
	assert.Equal(t, PhysicsFrame{
		Gear:           4,
		SpeedKmh:       120,
		AccG:           [3]float32{1, 0, -0.7},
		WheelsPressure: PerWheel{26, 27.5, 28, 28.5},
		BrakeTemp:      PerWheel{320, 330, 200, 220},
	}, p)

	assert.Zero(t, p.HoldFinite(&last), "already finite")
}

func TestGraphicsFrame_HoldFinite(t *testing.T) {
	last := GraphicsFrame{NormalizedCarPosition: 0.4, CarCoordinates: [3]float32{10, 1, -5}}
	g := GraphicsFrame{
		CompletedLaps:         2,
		NormalizedCarPosition: float32(math.NaN()),
		CarCoordinates:        [3]float32{11, 1, float32(math.Inf(1))},
	}
	assert.Equal(t, 2, g.HoldFinite(&last))
	assert.Equal(t, float32(0.4), g.NormalizedCarPosition)
	assert.Equal(t, [3]float32{11, 1, -5}, g.CarCoordinates)
	assert.Equal(t, int32(2), g.CompletedLaps)
}

func TestPerWheel_Axles(t *testing.T) {
	p := PerWheel{-2, 1, 3, -5}
	assert.Equal(t, PerWheel{2, 1, 3, 5}, p.Abs())
	assert.Equal(t, PerWheel{-2, 1, 3, -5}, p, "receiver untouched")
	assert.InDelta(t, -0.5, p.FrontAvg(), 1e-6)
	assert.InDelta(t, -1.0, p.RearAvg(), 1e-6)
	assert.InDelta(t, 1.5, p.Abs().FrontAvg(), 1e-6)
	assert.InDelta(t, 4.0, p.Abs().RearAvg(), 1e-6)
}

func TestLapData_FastBump(t *testing.T) {
	l := &LapData{}
	l.Damper[FL].FastBump = 10
	l.Damper[FR].FastBump = 20
	l.Damper[RR].FastBump = 4
	assert.Equal(t, PerWheel{10, 20, 0, 4}, l.FastBump())
	assert.InDelta(t, 15.0, l.FastBump().FrontAvg(), 1e-6)
}
