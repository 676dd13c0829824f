package lap

import (
	"math"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
)

const (
	fullThrottleLevel  = 0.95
	coastingMinSpeed   = 30.0
	coastingPedalLimit = 0.05
	overlapPedalLevel  = 0.1
	trailBrakeLevel    = 0.1
	trailSteerLevel    = 0.05
	gripUsageMinG      = 0.5
	maxCombinedG       = 2.0
	slipMinSpeed       = 20.0
	lockupSlipRatio    = 0.2
	lockupBrakeLevel   = 0.1
	balanceSlipAngle   = 1.5 // degrees between axles
	pressureMinSpeed   = 50.0
	ReferencePressure  = 27.5 // psi
	throttleJerkFactor = 50.0
	steeringJerkFactor = 200.0
	tyreScorePerPsi    = 20.0
	consistencyBand    = 500.0 // ms
	defaultTrailScore  = 50.0
	defaultSmoothness  = 100.0
	defaultTyreScore   = 100.0
	percent            = 100.0
	mmPerMeter         = 1000.0
	numWheels          = 4
)

// accumulator collects everything that needs a single pass over the physics frames.
type accumulator struct {
	dt   float64
	n    int
	prev *model.PhysicsFrame

	firstFuel, lastFuel float32
	maxSpeed            float32
	speedSum            float64
	gearShifts          int

	fullThrottle, coasting, overlap int

	trailSum     float64
	trailSamples int
	gripSum      float64
	gripSamples  int

	oversteer, understeer, lockups int
	peakLat, peakLon               float32

	maxBrakeTemp              model.PerWheel
	tempI, tempM, tempO, susp [4]float64
	pressureSum               [4]float64
	pressureSamples           int
	damper                    [4]damperCounter
	throttleJerk, steerJerk   float64
	jerkSamples               int
}

func newAccumulator(dt float64) *accumulator {
	return &accumulator{dt: dt}
}

//nolint:funlen,cyclop // single pass by design
func (a *accumulator) add(p *model.PhysicsFrame) {
	if a.n == 0 {
		a.firstFuel = p.Fuel
	}
	a.n++
	a.lastFuel = p.Fuel

	a.maxSpeed = max(a.maxSpeed, p.SpeedKmh)
	a.speedSum += float64(p.SpeedKmh)

	if p.Gas > fullThrottleLevel {
		a.fullThrottle++
	}
	if p.SpeedKmh > coastingMinSpeed && p.Gas < coastingPedalLimit && p.Brake < coastingPedalLimit {
		a.coasting++
	}
	if p.Gas > overlapPedalLevel && p.Brake > overlapPedalLevel {
		a.overlap++
	}

	steer := math.Abs(float64(p.SteerAngle))
	if p.Brake > trailBrakeLevel && steer > trailSteerLevel {
		ideal := 1 - math.Min(steer, 1)
		a.trailSum += math.Max(1-math.Abs(ideal-float64(p.Brake)), 0)
		a.trailSamples++
	}

	lat, lon := float64(p.LatG()), float64(p.LonG())
	if combined := math.Hypot(lat, lon); combined > gripUsageMinG {
		a.gripSum += combined
		a.gripSamples++
	}
	a.peakLat = max(a.peakLat, float32(math.Abs(lat)))
	a.peakLon = min(a.peakLon, p.LonG())

	if p.SpeedKmh > slipMinSpeed {
		a.classifyBalance(p)
	}

	for w := range numWheels {
		a.maxBrakeTemp[w] = max(a.maxBrakeTemp[w], p.BrakeTemp[w])
		a.tempI[w] += float64(p.TyreTempI[w])
		a.tempM[w] += float64(p.TyreTempM[w])
		a.tempO[w] += float64(p.TyreTempO[w])
		a.susp[w] += float64(p.SuspensionTravel[w])
	}
	if p.SpeedKmh > pressureMinSpeed {
		for w := range numWheels {
			a.pressureSum[w] += float64(p.WheelsPressure[w])
		}
		a.pressureSamples++
	}

	if a.prev != nil {
		a.gearShifts += boolToInt(p.Gear != a.prev.Gear)
		for w := range numWheels {
			delta := float64(p.SuspensionTravel[w] - a.prev.SuspensionTravel[w])
			a.damper[w].add(delta / a.dt * mmPerMeter)
		}
		a.throttleJerk += math.Abs(float64(p.LonG() - a.prev.LonG()))
		a.steerJerk += math.Abs(float64(p.SteerAngle - a.prev.SteerAngle))
		a.jerkSamples++
	}
	a.prev = p
}

// classifyBalance compares the mean absolute slip angle of both axles and
// checks for locking wheels under braking.
func (a *accumulator) classifyBalance(p *model.PhysicsFrame) {
	slip := p.SlipAngle.Abs()
	front, rear := slip.FrontAvg(), slip.RearAvg()
	switch {
	case rear-front > balanceSlipAngle:
		a.oversteer++
	case front-rear > balanceSlipAngle:
		a.understeer++
	}
	if p.Brake > lockupBrakeLevel {
		for _, w := range model.Wheels() {
			if abs32(p.SlipRatio[w]) > lockupSlipRatio {
				a.lockups++
				break
			}
		}
	}
}

//nolint:funlen // just assignments
func (a *accumulator) fill(l *model.LapData) {
	n := float64(a.n)
	l.Samples = a.n
	l.MaxSpeed = a.maxSpeed
	l.AvgSpeed = float32(a.speedSum / n)
	l.FuelUsed = max(a.firstFuel-a.lastFuel, 0)
	l.GearShifts = a.gearShifts

	l.FullThrottlePercent = ratioPercent(a.fullThrottle, a.n)
	l.CoastingPercent = ratioPercent(a.coasting, a.n)
	l.PedalOverlapPercent = ratioPercent(a.overlap, a.n)

	l.TrailBrakingScore = defaultTrailScore
	if a.trailSamples > 0 {
		l.TrailBrakingScore = clamp(float32(a.trailSum/float64(a.trailSamples)*percent), 0, 100)
	}
	if a.gripSamples > 0 {
		avg := a.gripSum / float64(a.gripSamples)
		l.GripUsagePercent = clamp(float32(avg/maxCombinedG*percent), 0, 100)
	}
	l.ThrottleSmoothness = defaultSmoothness
	l.SteeringSmoothness = defaultSmoothness
	if a.jerkSamples > 0 {
		rate := a.throttleJerk / float64(a.jerkSamples)
		l.ThrottleSmoothness = clamp(float32(percent-rate*throttleJerkFactor), 0, 100)
		steerRate := a.steerJerk / float64(a.jerkSamples)
		l.SteeringSmoothness = clamp(float32(percent-steerRate*steeringJerkFactor), 0, 100)
	}

	l.OversteerCount = a.oversteer
	l.UndersteerCount = a.understeer
	l.LockupCount = a.lockups
	l.PeakLatG = a.peakLat
	l.PeakLonG = a.peakLon

	l.MaxBrakeTemp = a.maxBrakeTemp
	var devSum float64
	devWheels := 0
	for w := range numWheels {
		l.TyreTempInner[w] = float32(a.tempI[w] / n)
		l.TyreTempMiddle[w] = float32(a.tempM[w] / n)
		l.TyreTempOuter[w] = float32(a.tempO[w] / n)
		l.TyreTempAvg[w] = (l.TyreTempInner[w] + l.TyreTempMiddle[w] + l.TyreTempOuter[w]) / 3
		l.AvgSuspension[w] = float32(a.susp[w] / n)
		l.Damper[w] = a.damper[w].histogram()
		if a.pressureSamples > 0 {
			l.AvgTyrePressure[w] = float32(a.pressureSum[w] / float64(a.pressureSamples))
			l.PressureDeviation[w] = l.AvgTyrePressure[w] - ReferencePressure
			devSum += math.Abs(float64(l.PressureDeviation[w]))
			devWheels++
		}
	}
	l.TyreScore = defaultTyreScore
	if devWheels > 0 {
		l.TyreScore = clamp(float32(percent-devSum/float64(devWheels)*tyreScorePerPsi), 0, 100)
	}
}

func ratioPercent(count, total int) float32 {
	if total == 0 {
		return 0
	}
	return clamp(float32(count)/float32(total)*percent, 0, 100)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
