package engineer

import (
	"math"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
)

const (
	ffbClipLevel       = 0.98
	inputSampleEvery   = 3
	inputRingSize      = 200
	bottomingTravel    = 0.005 // m
	lockupSlip         = 0.2
	lockupBrake        = 0.1
	lockupMinSpeed     = 30
	wheelspinSlip      = 0.15
	wheelspinGas       = 0.3
	wheelspinMaxSpeed  = 120
	coastingMinSpeed   = 30
	coastingPedalLimit = 0.05
)

type inputSample struct {
	gas   float32
	brake float32
	steer float32
}

// windowStats holds raw counters of the current analysis window.
// They are reset once the window exceeds the configured history size.
type windowStats struct {
	totalFrames   int
	ffbClipFrames int
	bottoming     [4]int
	frontLockups  int
	rearLockups   int
	wheelspin     int
	coasting      int
	inputs        []inputSample
	// ticks since the engineer started, keeps the input sampling phase across resets
	ticks int
}

func newWindowStats() windowStats {
	return windowStats{inputs: make([]inputSample, 0, inputRingSize)}
}

func (w *windowStats) reset() {
	ticks := w.ticks
	*w = newWindowStats()
	w.ticks = ticks
}

func (w *windowStats) update(p *model.PhysicsFrame) {
	w.totalFrames++
	w.ticks++
	if math.Abs(float64(p.FinalFF)) > ffbClipLevel {
		w.ffbClipFrames++
	}
	if w.ticks%inputSampleEvery == 0 {
		w.pushInput(inputSample{gas: p.Gas, brake: p.Brake, steer: p.SteerAngle})
	}
	for _, wh := range model.Wheels() {
		if p.SuspensionTravel[wh] < bottomingTravel {
			w.bottoming[wh]++
		}
	}
	if p.SpeedKmh > lockupMinSpeed && p.Brake > lockupBrake {
		if p.WheelSlip[model.FL] > lockupSlip || p.WheelSlip[model.FR] > lockupSlip {
			w.frontLockups++
		}
		if p.WheelSlip[model.RL] > lockupSlip || p.WheelSlip[model.RR] > lockupSlip {
			w.rearLockups++
		}
	}
	if p.Gas > wheelspinGas && p.SpeedKmh < wheelspinMaxSpeed &&
		(p.WheelSlip[model.RL] > wheelspinSlip || p.WheelSlip[model.RR] > wheelspinSlip) {
		w.wheelspin++
	}
	if p.SpeedKmh > coastingMinSpeed && p.Gas < coastingPedalLimit && p.Brake < coastingPedalLimit {
		w.coasting++
	}
}

// pushInput appends to the ring, dropping the oldest sample when full.
func (w *windowStats) pushInput(s inputSample) {
	if len(w.inputs) == inputRingSize {
		copy(w.inputs, w.inputs[1:])
		w.inputs = w.inputs[:inputRingSize-1]
	}
	w.inputs = append(w.inputs, s)
}

// ratio returns count relative to the window size in percent, 0 for an empty window.
func (w *windowStats) ratio(count int) float32 {
	if w.totalFrames == 0 {
		return 0
	}
	return float32(count) / float32(w.totalFrames) * 100
}

// Derived holds values computed from the latest tick.
type Derived struct {
	FuelLapsRemaining float32 // 0 if fuel per lap is unknown
	PredictedLapTime  int32   // ms, 0 if unknown
}

func computeDerived(p *model.PhysicsFrame, g *model.GraphicsFrame) Derived {
	ret := Derived{}
	if g.FuelXLap > 0 {
		ret.FuelLapsRemaining = p.Fuel / g.FuelXLap
	}
	if g.IBestTime > 0 {
		ret.PredictedLapTime = g.IBestTime + int32(p.PerformanceMeter*1000)
	} else {
		ret.PredictedLapTime = g.ILastTime
	}
	return ret
}
