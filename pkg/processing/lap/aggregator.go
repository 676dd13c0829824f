// Package lap turns the frames of one completed lap into a model.LapData record.
package lap

import (
	"math"
	"slices"
	"time"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/model"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/session"
)

const (
	DefaultSampleInterval = 3 * time.Millisecond
	DefaultTraceStep      = 5
)

type (
	// Input is one completed lap buffer. Graphics is index aligned with Physics
	// and may be shorter.
	Input struct {
		LapNumber int
		LapTimeMs int32
		Physics   []model.PhysicsFrame
		Graphics  []model.GraphicsFrame
		Car       string
		Track     string
	}
	Aggregator struct {
		sampleInterval float64 // seconds
		traceStep      int
		l              *log.Logger
	}
	Option func(a *Aggregator)
)

// WithSampleInterval sets the tick interval used for the suspension velocity.
func WithSampleInterval(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.sampleInterval = d.Seconds()
		}
	}
}

// WithTraceStep sets every how many frames a trace point is taken.
func WithTraceStep(step int) Option {
	return func(a *Aggregator) {
		if step > 0 {
			a.traceStep = step
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *Aggregator) {
		a.l = l
	}
}

func NewAggregator(opts ...Option) *Aggregator {
	ret := &Aggregator{
		sampleInterval: DefaultSampleInterval.Seconds(),
		traceStep:      DefaultTraceStep,
		l:              log.Default().Named("lap"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Aggregate computes the LapData for in, appends it to the session and updates
// the session's best lap and best sectors.
// Returns false and leaves the session untouched if there are no physics frames.
func (a *Aggregator) Aggregate(s *session.State, in *Input) (*model.LapData, bool) {
	if in == nil || len(in.Physics) == 0 {
		return nil, false
	}
	phys, gfx, held := finiteFrames(in.Physics, in.Graphics)
	if held > 0 {
		a.l.Debug("replaced non-finite samples", log.Int("lap", in.LapNumber), log.Int("values", held))
	}
	lastGfx := graphicsAt(gfx, len(phys)-1)
	sectors := decomposeSectors(lastGfx.Split, in.LapTimeMs)
	s.UpdateBestSectors(sectors)

	firstGfx := graphicsAt(gfx, 0)
	acc := newAccumulator(a.sampleInterval)
	for i := range phys {
		acc.add(&phys[i])
	}

	trace, bounds := buildTrace(phys, gfx, a.traceStep)

	lap := model.LapData{
		LapNumber:    in.LapNumber,
		LapTimeMs:    in.LapTimeMs,
		SectorsMs:    sectors,
		Car:          in.Car,
		Track:        in.Track,
		TyreCompound: firstGfx.TyreCompound,
		AirTemp:      phys[0].AirTemp,
		RoadTemp:     phys[0].RoadTemp,
		TrackGrip:    clamp(firstGfx.SurfaceGrip*100, 0, 100),

		TelemetryTrace: trace,
		TraceBounds:    bounds,
		AvgCornerSpeed: cornerSpeed(trace),
	}
	acc.fill(&lap)
	lap.ConsistencyScore = consistencyScore(in.LapTimeMs, s.BestLapTime())
	lap.Radar = Radar(&lap)

	s.Append(lap)
	ret, _ := s.LastLap()
	a.l.Debug("lap aggregated",
		log.Int("lap", ret.LapNumber),
		log.Int32("timeMs", ret.LapTimeMs),
		log.Any("sectors", ret.SectorsMs),
		log.Int("samples", ret.Samples),
		log.Int("bestIdx", s.BestLapIndex()))
	return ret, true
}

// finiteFrames returns copies of the frames where every NaN or infinite
// channel holds the last finite value of that channel (0 before the first one).
//
//nolint:whitespace // editor/linter issue
func finiteFrames(
	phys []model.PhysicsFrame,
	gfx []model.GraphicsFrame,
) ([]model.PhysicsFrame, []model.GraphicsFrame, int) {
	held := 0
	retP := slices.Clone(phys)
	var lastP model.PhysicsFrame
	for i := range retP {
		held += retP[i].HoldFinite(&lastP)
		lastP = retP[i]
	}
	retG := slices.Clone(gfx)
	var lastG model.GraphicsFrame
	for i := range retG {
		held += retG[i].HoldFinite(&lastG)
		lastG = retG[i]
	}
	return retP, retG, held
}

// graphicsAt returns the graphics frame for physics index idx. Indexes past the
// end fall back to the last available frame.
func graphicsAt(gfx []model.GraphicsFrame, idx int) *model.GraphicsFrame {
	if len(gfx) == 0 {
		return &model.GraphicsFrame{}
	}
	if idx >= len(gfx) {
		idx = len(gfx) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return &gfx[idx]
}

// decomposeSectors splits the lap by the cumulative split times.
// A missing second split is treated as equal to the first one.
func decomposeSectors(split []int32, lapTime int32) [3]int32 {
	var first, second int32
	if len(split) > 0 {
		first = split[0]
		second = first
	}
	if len(split) > 1 {
		second = split[1]
	}
	return [3]int32{
		max(first, 0),
		max(second-first, 0),
		max(lapTime-second, 0),
	}
}

// consistencyScore is 100 for a lap matching the session best and loses
// 10 points per consistencyBand ms of difference.
func consistencyScore(lapTime, best int32) float32 {
	if best <= 0 || lapTime <= 0 {
		return 100
	}
	delta := lapTime - best
	if delta < 0 {
		delta = -delta
	}
	return clamp(100-float32(delta)/consistencyBand*10, 0, 100)
}

func clamp(v, low, high float32) float32 {
	if math.IsNaN(float64(v)) {
		return low
	}
	return min(max(v, low), high)
}
