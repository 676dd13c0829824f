//nolint:funlen,lll // ok for tests
package lap

import (
	"cmp"
	"encoding/json"
	"math"
	"math/rand"
	"slices"
	"testing"
	"time"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/session"
)

type frameMod func(i int, p *model.PhysicsFrame, g *model.GraphicsFrame)

// buildInput creates n frames spread over one lap. Defaults describe a car
// cruising at 100 km/h on a warm track.
func buildInput(lapNo int, lapTime int32, n int, mods ...frameMod) *Input {
	in := &Input{
		LapNumber: lapNo,
		LapTimeMs: lapTime,
		Physics:   make([]model.PhysicsFrame, n),
		Graphics:  make([]model.GraphicsFrame, n),
		Car:       "ks_mazda_mx5_cup",
		Track:     "magione",
	}
	for i := range n {
		p := &in.Physics[i]
		g := &in.Graphics[i]
		p.SpeedKmh = 100
		p.Gear = 4
		p.Fuel = 30 - float32(i)*0.001
		p.AirTemp = 22
		p.RoadTemp = 31
		p.WheelsPressure = model.PerWheel{27.5, 27.5, 27.5, 27.5}
		p.SuspensionTravel = model.PerWheel{0.05, 0.05, 0.05, 0.05}
		g.Split = []int32{30000, 62000}
		g.NormalizedCarPosition = float32(i) / float32(n)
		g.ICurrentTime = int32(i) * (lapTime / int32(n))
		g.CarCoordinates = [3]float32{float32(i), 0, float32(-i)}
		g.SurfaceGrip = 0.98
		g.TyreCompound = "Semislicks (SM)"
		for _, mod := range mods {
			mod(i, p, g)
		}
	}
	return in
}

func TestAggregate_EmptyPhysics(t *testing.T) {
	s := session.NewState()
	a := NewAggregator()
	got, ok := a.Aggregate(s, &Input{LapNumber: 1, LapTimeMs: 90000})
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Zero(t, s.LapCount())
	assert.Equal(t, [3]int32{}, s.BestSectors)

	_, ok = a.Aggregate(s, nil)
	assert.False(t, ok)
	assert.Zero(t, s.LapCount())
}

func TestAggregate_FullThrottle(t *testing.T) {
	s := session.NewState()
	in := buildInput(1, 90000, 1000, func(_ int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
		p.Gas = 1
		p.Brake = 0
	})
	got, ok := NewAggregator().Aggregate(s, in)
	require.True(t, ok)
	assert.InDelta(t, 100, got.FullThrottlePercent, 0.01)
	assert.InDelta(t, 0, got.CoastingPercent, 0.01)
	assert.InDelta(t, 0, got.PedalOverlapPercent, 0.01)
	assert.Equal(t, float32(100), got.MaxSpeed)
	assert.Equal(t, float32(100), got.AvgSpeed)
	assert.Equal(t, 1000, got.Samples)
	assert.Equal(t, 0, got.GearShifts)
	assert.Equal(t, float32(50), got.TrailBrakingScore, "no trail braking samples")
	assert.Equal(t, float32(100), got.ThrottleSmoothness)
	assert.InDelta(t, 0.999, got.FuelUsed, 0.0001)
	assert.Equal(t, float32(22), got.AirTemp)
	assert.Equal(t, float32(31), got.RoadTemp)
	assert.InDelta(t, 98, got.TrackGrip, 0.001)
	assert.Equal(t, "Semislicks (SM)", got.TyreCompound)
	assert.Equal(t, 1, s.LapCount())
}

func TestAggregate_Coasting(t *testing.T) {
	s := session.NewState()
	in := buildInput(1, 90000, 100, func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
		if i%2 == 0 {
			p.Gas = 0.5
			p.Brake = 0.5 // overlap
		}
	})
	got, ok := NewAggregator().Aggregate(s, in)
	require.True(t, ok)
	assert.InDelta(t, 50, got.CoastingPercent, 0.01)
	assert.InDelta(t, 50, got.PedalOverlapPercent, 0.01)
}

func TestDecomposeSectors(t *testing.T) {
	tests := []struct {
		name    string
		split   []int32
		lapTime int32
		want    [3]int32
	}{
		{name: "regular", split: []int32{30000, 62000}, lapTime: 95000, want: [3]int32{30000, 32000, 33000}},
		{name: "no splits", split: nil, lapTime: 95000, want: [3]int32{0, 0, 95000}},
		{name: "single split", split: []int32{30000}, lapTime: 95000, want: [3]int32{30000, 0, 65000}},
		{name: "negative garbage", split: []int32{-10, -20}, lapTime: 95000, want: [3]int32{0, 0, 95000}},
		{name: "split beyond lap", split: []int32{30000, 99000}, lapTime: 95000, want: [3]int32{30000, 69000, 0}},
		{name: "decreasing splits", split: []int32{50000, 40000}, lapTime: 95000, want: [3]int32{50000, 0, 55000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decomposeSectors(tt.split, tt.lapTime)
			assert.Equal(t, tt.want, got)
			for _, v := range got {
				assert.GreaterOrEqual(t, v, int32(0))
			}
		})
	}
}

func TestAggregate_SectorsAndBest(t *testing.T) {
	s := session.NewState()
	a := NewAggregator()

	lap1, ok := a.Aggregate(s, buildInput(1, 95000, 50))
	require.True(t, ok)
	assert.Equal(t, [3]int32{30000, 32000, 33000}, lap1.SectorsMs)
	assert.Equal(t, lap1.LapTimeMs, lap1.SectorSum())
	assert.Equal(t, [3]int32{30000, 32000, 33000}, s.BestSectors)
	assert.Equal(t, 0, s.BestLapIndex())

	// faster lap with a better first and third sector
	_, ok = a.Aggregate(s, buildInput(2, 93000, 50, func(_ int, _ *model.PhysicsFrame, g *model.GraphicsFrame) {
		g.Split = []int32{29000, 62000}
	}))
	require.True(t, ok)
	assert.Equal(t, [3]int32{29000, 32000, 31000}, s.BestSectors)
	assert.Equal(t, 1, s.BestLapIndex())

	// aborted lap: garbage sectors and a short lap time must not count
	_, ok = a.Aggregate(s, buildInput(3, 1500, 50, func(_ int, _ *model.PhysicsFrame, g *model.GraphicsFrame) {
		g.Split = []int32{500, 900}
	}))
	require.True(t, ok)
	assert.Equal(t, [3]int32{29000, 32000, 31000}, s.BestSectors)
	assert.Equal(t, 1, s.BestLapIndex())
	assert.Equal(t, 3, s.LapCount())
}

func TestAggregate_PercentagesInRange(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	s := session.NewState()
	in := buildInput(1, 90000, 2000, func(_ int, p *model.PhysicsFrame, g *model.GraphicsFrame) {
		p.Gas = rnd.Float32()
		p.Brake = rnd.Float32()
		p.SteerAngle = rnd.Float32()*4 - 2
		p.SpeedKmh = rnd.Float32() * 300
		p.AccG = [3]float32{rnd.Float32()*8 - 4, 0, rnd.Float32()*8 - 4}
		p.SlipAngle = model.PerWheel{rnd.Float32() * 10, rnd.Float32() * 10, rnd.Float32() * 10, rnd.Float32() * 10}
		p.SlipRatio = model.PerWheel{rnd.Float32() - 0.5, 0, 0, 0}
		p.WheelsPressure = model.PerWheel{rnd.Float32() * 60, 20, 35, 27}
		p.SuspensionTravel = model.PerWheel{rnd.Float32() * 0.1, rnd.Float32() * 0.1, 0.02, 0.02}
		g.NormalizedCarPosition = rnd.Float32()
		g.SurfaceGrip = rnd.Float32() * 2
	})
	got, ok := NewAggregator().Aggregate(s, in)
	require.True(t, ok)
	percents := map[string]float32{
		"fullThrottle": got.FullThrottlePercent,
		"coasting":     got.CoastingPercent,
		"overlap":      got.PedalOverlapPercent,
		"trail":        got.TrailBrakingScore,
		"throttleSmth": got.ThrottleSmoothness,
		"steeringSmth": got.SteeringSmoothness,
		"gripUsage":    got.GripUsagePercent,
		"consistency":  got.ConsistencyScore,
		"tyreScore":    got.TyreScore,
		"trackGrip":    got.TrackGrip,
		"damperFLfast": got.Damper[model.FL].FastBump,
		"damperFLslow": got.Damper[model.FL].SlowRebound,
		"damperRRfast": got.Damper[model.RR].FastBump,
	}
	for name, v := range percents {
		assert.GreaterOrEqual(t, v, float32(0), name)
		assert.LessOrEqual(t, v, float32(100), name)
	}
	for _, v := range []float32{got.Radar.Smoothness, got.Radar.Aggression, got.Radar.Consistency, got.Radar.CarControl, got.Radar.TyreManagement} {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
	assert.True(t, slices.IsSortedFunc(got.TelemetryTrace, func(a, b model.TelemetryPoint) int {
		return cmp.Compare(a.Distance, b.Distance)
	}))
}

func TestAggregate_TraceSortedAcrossStartLine(t *testing.T) {
	s := session.NewState()
	// the first 10 frames still report the end of the previous lap
	in := buildInput(1, 90000, 100, func(i int, _ *model.PhysicsFrame, g *model.GraphicsFrame) {
		if i < 10 {
			g.NormalizedCarPosition = 0.99 + float32(i)*0.0001
		}
	})
	got, ok := NewAggregator().Aggregate(s, in)
	require.True(t, ok)
	require.Len(t, got.TelemetryTrace, 20)
	assert.True(t, slices.IsSortedFunc(got.TelemetryTrace, func(a, b model.TelemetryPoint) int {
		return cmp.Compare(a.Distance, b.Distance)
	}))
	assert.InDelta(t, 0.99, got.TelemetryTrace[len(got.TelemetryTrace)-1].Distance, 0.001)
}

func TestAggregate_TraceBoundsIgnoreOrigin(t *testing.T) {
	s := session.NewState()
	in := buildInput(1, 90000, 50, func(i int, _ *model.PhysicsFrame, g *model.GraphicsFrame) {
		g.CarCoordinates = [3]float32{float32(10 + i), 5, float32(20 + i)}
		if i%10 == 0 {
			g.CarCoordinates = [3]float32{0.05, 0, -0.05}
		}
	})
	got, ok := NewAggregator().Aggregate(s, in)
	require.True(t, ok)
	// trace points at i=5,15,25,35,45 are outside the origin
	assert.Equal(t, model.Bounds{MinX: 15, MaxX: 55, MinZ: 25, MaxZ: 65}, got.TraceBounds)
	assert.Len(t, got.TelemetryTrace, 10, "origin samples stay in the trace")
}

func TestAggregate_ShortGraphics(t *testing.T) {
	s := session.NewState()
	in := buildInput(1, 90000, 30)
	in.Graphics = in.Graphics[:3]
	in.Graphics[2].Split = []int32{40000, 70000}
	in.Graphics[2].NormalizedCarPosition = 0.5

	got, ok := NewAggregator().Aggregate(s, in)
	require.True(t, ok)
	assert.Equal(t, [3]int32{40000, 30000, 20000}, got.SectorsMs)
	require.Len(t, got.TelemetryTrace, 6)
	for _, p := range got.TelemetryTrace[1:] {
		assert.Equal(t, float32(0.5), p.Distance)
	}

	noGfx := buildInput(2, 90000, 30)
	noGfx.Graphics = nil
	got, ok = NewAggregator().Aggregate(s, noGfx)
	require.True(t, ok)
	assert.Equal(t, [3]int32{0, 0, 90000}, got.SectorsMs)
}

func TestAggregate_Deterministic(t *testing.T) {
	s := session.NewState()
	a := NewAggregator()
	mod := func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
		p.Gas = float32(i%7) / 7
		p.Brake = float32(i%5) / 10
		p.SteerAngle = float32(i%9)/9 - 0.5
		p.AccG = [3]float32{float32(i%11) / 5, 0, -float32(i%13) / 6}
		p.Gear = int32(2 + i%3)
	}
	first, ok := a.Aggregate(s, buildInput(1, 90000, 500, mod))
	require.True(t, ok)
	second, ok := a.Aggregate(s, buildInput(2, 90000, 500, mod))
	require.True(t, ok)

	cmpSecond := *second
	cmpSecond.LapNumber = first.LapNumber
	if diff := gocmp.Diff(*first, cmpSecond); diff != "" {
		t.Errorf("LapData differs: %s", diff)
	}
}

func TestAggregate_TrailBraking(t *testing.T) {
	tests := []struct {
		name  string
		brake float32
		steer float32
		want  float32
	}{
		{name: "ideal taper", brake: 0.5, steer: 0.5, want: 100},
		{name: "too much brake", brake: 1, steer: 0.5, want: 50},
		{name: "full lock", brake: 0.2, steer: -1.2, want: 80},
		{name: "no steering", brake: 0.8, steer: 0, want: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := buildInput(1, 90000, 20, func(_ int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
				p.Brake = tt.brake
				p.SteerAngle = tt.steer
			})
			got, ok := NewAggregator().Aggregate(session.NewState(), in)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got.TrailBrakingScore, 0.01)
		})
	}
}

func TestAggregate_Damper(t *testing.T) {
	tests := []struct {
		name   string
		stepMM float32 // travel change per frame
		want   model.DamperHistogram
	}{
		{name: "fast bump", stepMM: 0.1, want: model.DamperHistogram{FastBump: 100}},
		{name: "slow bump", stepMM: 0.03, want: model.DamperHistogram{SlowBump: 100}},
		{name: "fast rebound", stepMM: -0.2, want: model.DamperHistogram{FastRebound: 100}},
		{name: "slow rebound", stepMM: -0.06, want: model.DamperHistogram{SlowRebound: 100}},
		{name: "inactive", stepMM: 0.003, want: model.DamperHistogram{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := buildInput(1, 90000, 20, func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
				v := 0.05 + float32(i)*tt.stepMM/1000
				p.SuspensionTravel = model.PerWheel{v, v, v, v}
			})
			got, ok := NewAggregator().Aggregate(session.NewState(), in)
			require.True(t, ok)
			for _, w := range model.Wheels() {
				assert.InDelta(t, tt.want.FastBump, got.Damper[w].FastBump, 0.01, w.String())
				assert.InDelta(t, tt.want.SlowBump, got.Damper[w].SlowBump, 0.01, w.String())
				assert.InDelta(t, tt.want.FastRebound, got.Damper[w].FastRebound, 0.01, w.String())
				assert.InDelta(t, tt.want.SlowRebound, got.Damper[w].SlowRebound, 0.01, w.String())
			}
		})
	}
}

func TestAggregate_SampleInterval(t *testing.T) {
	// 0.03mm per frame is slow bump at 3ms but inactive at 30ms
	in := buildInput(1, 90000, 20, func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
		v := 0.05 + float32(i)*0.00003
		p.SuspensionTravel = model.PerWheel{v, v, v, v}
	})
	got, ok := NewAggregator(WithSampleInterval(30*time.Millisecond)).Aggregate(session.NewState(), in)
	require.True(t, ok)
	assert.Equal(t, model.DamperHistogram{}, got.Damper[model.FL])
}

func TestAggregate_VehicleHealth(t *testing.T) {
	in := buildInput(1, 90000, 100, func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
		p.BrakeTemp = model.PerWheel{float32(300 + i), 200, 150, 150}
		p.TyreTempI = model.PerWheel{90, 90, 80, 80}
		p.TyreTempM = model.PerWheel{85, 85, 80, 80}
		p.TyreTempO = model.PerWheel{80, 80, 80, 80}
		p.WheelsPressure = model.PerWheel{28.5, 28.5, 26.5, 26.5}
		if i < 50 {
			p.SpeedKmh = 40 // pressure is ignored at low speed
			p.WheelsPressure = model.PerWheel{10, 10, 10, 10}
		}
		if i%10 == 0 {
			p.Gear = 3
		}
	})
	got, ok := NewAggregator().Aggregate(session.NewState(), in)
	require.True(t, ok)
	assert.Equal(t, model.PerWheel{399, 200, 150, 150}, got.MaxBrakeTemp)
	assert.InDelta(t, 85, got.TyreTempAvg[model.FL], 0.001)
	assert.InDelta(t, 80, got.TyreTempAvg[model.RR], 0.001)
	assert.InDelta(t, 28.5, got.AvgTyrePressure[model.FL], 0.001)
	assert.InDelta(t, -1, got.PressureDeviation[model.RL], 0.001)
	assert.InDelta(t, 80, got.TyreScore, 0.01)
	assert.InDelta(t, 0.05, got.AvgSuspension[model.FR], 0.0001)
	assert.Equal(t, 19, got.GearShifts)
}

func TestAggregate_BalanceAndGrip(t *testing.T) {
	in := buildInput(1, 90000, 100, func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
		p.AccG = [3]float32{1.2, 0, -1.6}
		switch {
		case i < 10:
			p.SlipAngle = model.PerWheel{1, 1, 4, 4} // oversteer
		case i < 30:
			p.SlipAngle = model.PerWheel{5, 5, 1, 1} // understeer
		case i < 35:
			p.Brake = 0.8
			p.SlipRatio = model.PerWheel{-0.5, 0, 0, 0}
		case i < 40:
			p.SpeedKmh = 10 // below gate
			p.Brake = 0.8
			p.SlipRatio = model.PerWheel{-0.5, 0, 0, 0}
			p.SlipAngle = model.PerWheel{5, 5, 1, 1}
		}
	})
	got, ok := NewAggregator().Aggregate(session.NewState(), in)
	require.True(t, ok)
	assert.Equal(t, 10, got.OversteerCount)
	assert.Equal(t, 20, got.UndersteerCount)
	assert.Equal(t, 5, got.LockupCount)
	assert.InDelta(t, 100, got.GripUsagePercent, 0.01, "combined 2.0G is the limit")
	assert.InDelta(t, 1.2, got.PeakLatG, 0.0001)
	assert.InDelta(t, -1.6, got.PeakLonG, 0.0001)
	assert.InDelta(t, 100, got.AvgCornerSpeed, 0.5)
}

func TestConsistencyScore(t *testing.T) {
	tests := []struct {
		name    string
		lapTime int32
		best    int32
		want    float32
	}{
		{name: "no best", lapTime: 90000, best: 0, want: 100},
		{name: "equal", lapTime: 90000, best: 90000, want: 100},
		{name: "half second", lapTime: 90500, best: 90000, want: 90},
		{name: "faster than best", lapTime: 89000, best: 90000, want: 80},
		{name: "far away", lapTime: 120000, best: 90000, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, consistencyScore(tt.lapTime, tt.best), 0.001)
		})
	}
}

func TestAggregate_NonFiniteSamples(t *testing.T) {
	nan := float32(math.NaN())
	posInf := float32(math.Inf(1))
	negInf := float32(math.Inf(-1))
	// bad marks every fourth frame starting at 1, frame 0 stays finite
	bad := func(i int) bool { return i%4 == 1 }
	tests := []struct {
		name  string
		mod   frameMod
		check func(t *testing.T, l *model.LapData)
	}{
		{
			name: "speed NaN",
			mod: func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
				if bad(i) {
					p.SpeedKmh = nan
				}
			},
			check: func(t *testing.T, l *model.LapData) {
				assert.InDelta(t, 100.0, l.MaxSpeed, 1e-6)
				assert.InDelta(t, 100.0, l.AvgSpeed, 1e-6)
			},
		},
		{
			name: "speed Inf",
			mod: func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
				if bad(i) {
					p.SpeedKmh = posInf
				}
			},
			check: func(t *testing.T, l *model.LapData) {
				assert.InDelta(t, 100.0, l.MaxSpeed, 1e-6)
			},
		},
		{
			name: "lateral G NaN",
			mod: func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
				p.AccG[0] = 1.2
				if bad(i) {
					p.AccG[0] = nan
				}
			},
			check: func(t *testing.T, l *model.LapData) {
				assert.InDelta(t, 1.2, l.PeakLatG, 1e-6)
			},
		},
		{
			name: "longitudinal G -Inf",
			mod: func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
				p.AccG[2] = -0.8
				if bad(i) {
					p.AccG[2] = negInf
				}
			},
			check: func(t *testing.T, l *model.LapData) {
				assert.InDelta(t, -0.8, l.PeakLonG, 1e-6)
			},
		},
		{
			name: "tyre temps NaN",
			mod: func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
				p.TyreTempI = model.PerWheel{80, 80, 80, 80}
				p.TyreTempM = model.PerWheel{80, 80, 80, 80}
				p.TyreTempO = model.PerWheel{80, 80, 80, 80}
				if bad(i) {
					p.TyreTempI[model.FL] = nan
					p.TyreTempM[model.FR] = posInf
					p.TyreTempO[model.RL] = nan
				}
			},
			check: func(t *testing.T, l *model.LapData) {
				for _, w := range model.Wheels() {
					assert.InDelta(t, 80.0, l.TyreTempAvg[w], 1e-4, w.String())
				}
			},
		},
		{
			name: "brake temp Inf",
			mod: func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
				p.BrakeTemp = model.PerWheel{400, 400, 300, 300}
				if bad(i) {
					p.BrakeTemp[model.FL] = posInf
					p.BrakeTemp[model.RR] = nan
				}
			},
			check: func(t *testing.T, l *model.LapData) {
				assert.Equal(t, model.PerWheel{400, 400, 300, 300}, l.MaxBrakeTemp)
			},
		},
		{
			name: "pressure NaN",
			mod: func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
				if bad(i) {
					p.WheelsPressure[model.RR] = nan
				}
			},
			check: func(t *testing.T, l *model.LapData) {
				assert.InDelta(t, 27.5, l.AvgTyrePressure[model.RR], 1e-4)
				assert.InDelta(t, 100.0, l.TyreScore, 1e-3)
			},
		},
		{
			name: "suspension NaN",
			mod: func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
				if bad(i) {
					p.SuspensionTravel[model.FL] = nan
				}
			},
			check: func(t *testing.T, l *model.LapData) {
				assert.InDelta(t, 0.05, l.AvgSuspension[model.FL], 1e-6)
			},
		},
		{
			name: "slip NaN",
			mod: func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
				if bad(i) {
					p.SlipAngle[model.RL] = nan
					p.SlipRatio[model.FR] = posInf
					p.WheelSlip[model.FL] = nan
				}
			},
			check: func(t *testing.T, l *model.LapData) {
				assert.Zero(t, l.OversteerCount)
				assert.Zero(t, l.LockupCount)
			},
		},
		{
			name: "first frame NaN",
			mod: func(i int, p *model.PhysicsFrame, _ *model.GraphicsFrame) {
				if i == 0 {
					p.Fuel = nan
					p.AirTemp = nan
					p.Gas = nan
				}
			},
			check: func(t *testing.T, l *model.LapData) {
				assert.Zero(t, l.AirTemp)
				assert.Zero(t, l.FuelUsed)
			},
		},
		{
			name: "position NaN",
			mod: func(i int, _ *model.PhysicsFrame, g *model.GraphicsFrame) {
				if bad(i) {
					g.NormalizedCarPosition = nan
					g.CarCoordinates[0] = posInf
				}
			},
			check: func(t *testing.T, l *model.LapData) {
				assert.True(t, slices.IsSortedFunc(l.TelemetryTrace, func(a, b model.TelemetryPoint) int {
					return cmp.Compare(a.Distance, b.Distance)
				}))
				assert.True(t, model.Finite(l.TraceBounds.MaxX))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := buildInput(1, 90000, 40, tt.mod)
			got, ok := NewAggregator().Aggregate(session.NewState(), in)
			require.True(t, ok)
			_, err := json.Marshal(got)
			require.NoError(t, err)
			tt.check(t, got)
			// the caller's frames stay untouched
			assert.True(t, slices.ContainsFunc(in.Physics, func(p model.PhysicsFrame) bool {
				return p.HoldFinite(&model.PhysicsFrame{}) > 0
			}) || slices.ContainsFunc(in.Graphics, func(g model.GraphicsFrame) bool {
				return g.HoldFinite(&model.GraphicsFrame{}) > 0
			}))
		})
	}
}
