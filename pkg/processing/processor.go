// Package processing drives the per session analytics from a stream of frames.
package processing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/model"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/advisor"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/engineer"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/lap"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/session"
)

var meter = otel.Meter("re.processing")

type (
	// LapSink receives every completed lap together with its advisor result.
	LapSink interface {
		LapCompleted(
			ctx context.Context,
			s *session.State,
			lap *model.LapData,
			analysis model.StandaloneAnalysis,
		) error
	}
	LapSinkFunc func(
		ctx context.Context,
		s *session.State,
		lap *model.LapData,
		analysis model.StandaloneAnalysis,
	) error

	// Result is the outcome of one processed frame.
	Result struct {
		Recommendations []model.Recommendation
		// Lap is set if this frame completed a lap
		Lap      *model.LapData
		Analysis model.StandaloneAnalysis
	}

	Processor struct {
		session    *session.State
		engineer   *engineer.Engineer
		aggregator *lap.Aggregator
		sinks      []LapSink

		physics   []model.PhysicsFrame
		graphics  []model.GraphicsFrame
		prevLaps  int32
		seen      bool
		log       *log.Logger
		tracer    trace.Tracer
		frames    metric.Int64Counter
		laps      metric.Int64Counter
		recsCount metric.Int64Counter
	}
	ProcessorOption func(p *Processor)
)

//nolint:whitespace // can't make both editor and linter happy
func (f LapSinkFunc) LapCompleted(
	ctx context.Context,
	s *session.State,
	lap *model.LapData,
	analysis model.StandaloneAnalysis,
) error {
	return f(ctx, s, lap, analysis)
}

func WithSession(s *session.State) ProcessorOption {
	return func(p *Processor) {
		p.session = s
	}
}

func WithEngineer(e *engineer.Engineer) ProcessorOption {
	return func(p *Processor) {
		p.engineer = e
	}
}

func WithAggregator(a *lap.Aggregator) ProcessorOption {
	return func(p *Processor) {
		p.aggregator = a
	}
}

func WithSink(sink LapSink) ProcessorOption {
	return func(p *Processor) {
		p.sinks = append(p.sinks, sink)
	}
}

// WithCarTrack sets car and track of the session and the lap records.
// Must be given after WithSession if both are used.
func WithCarTrack(car, track string) ProcessorOption {
	return func(p *Processor) {
		if p.session == nil {
			p.session = session.NewState()
		}
		p.session.Car = car
		p.session.Track = track
	}
}

func NewProcessor(opts ...ProcessorOption) *Processor {
	ret := &Processor{
		physics:  make([]model.PhysicsFrame, 0),
		graphics: make([]model.GraphicsFrame, 0),
		log:      log.Default().Named("processor"),
		tracer:   otel.Tracer("re"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.session == nil {
		ret.session = session.NewState()
	}
	if ret.engineer == nil {
		ret.engineer = engineer.NewEngineer()
	}
	if ret.aggregator == nil {
		ret.aggregator = lap.NewAggregator()
	}
	ret.frames, _ = meter.Int64Counter("re.frames",
		metric.WithDescription("processed telemetry frames"))
	ret.laps, _ = meter.Int64Counter("re.laps.completed",
		metric.WithDescription("aggregated laps"))
	ret.recsCount, _ = meter.Int64Counter("re.recommendations",
		metric.WithDescription("reported live recommendations"))
	return ret
}

func (p *Processor) Session() *session.State {
	return p.session
}

func (p *Processor) Engineer() *engineer.Engineer {
	return p.engineer
}

// ProcessFrame handles one tick.
// A lap is completed when CompletedLaps increases compared to the previous tick.
// The frames collected before this tick form the lap, this tick starts the next one.
// A decrease of CompletedLaps (session restart) drops the collected frames and
// resets the live engineer.
//
//nolint:whitespace // can't make both editor and linter happy
func (p *Processor) ProcessFrame(
	ctx context.Context,
	phys *model.PhysicsFrame,
	gfx *model.GraphicsFrame,
	now time.Time,
) Result {
	p.frames.Add(ctx, 1)
	ret := Result{}
	if p.seen {
		switch {
		case gfx.CompletedLaps > p.prevLaps:
			if l, ok := p.completeLap(gfx); ok {
				ret.Lap = l
				ret.Analysis = p.notify(ctx, l)
			}
			p.resetBuffer()
		case gfx.CompletedLaps < p.prevLaps:
			p.log.Debug("lap counter went back, dropping frames",
				log.Int32("prev", p.prevLaps),
				log.Int32("current", gfx.CompletedLaps),
				log.Int("frames", len(p.physics)))
			p.resetBuffer()
			p.engineer.Reset()
		}
	}
	p.prevLaps = gfx.CompletedLaps
	p.seen = true
	p.physics = append(p.physics, *phys)
	p.graphics = append(p.graphics, *gfx)

	if gfx.Session != model.SessionUnknown {
		ret.Recommendations = p.engineer.Tick(phys, gfx, now)
		for i := range ret.Recommendations {
			p.recsCount.Add(ctx, 1, metric.WithAttributes(
				attribute.String("severity", ret.Recommendations[i].Severity.String())))
		}
	}
	return ret
}

func (p *Processor) completeLap(gfx *model.GraphicsFrame) (*model.LapData, bool) {
	in := &lap.Input{
		LapNumber: int(p.prevLaps) + 1,
		LapTimeMs: gfx.ILastTime,
		Physics:   p.physics,
		Graphics:  p.graphics,
		Car:       p.session.Car,
		Track:     p.session.Track,
	}
	return p.aggregator.Aggregate(p.session, in)
}

func (p *Processor) notify(ctx context.Context, l *model.LapData) model.StandaloneAnalysis {
	p.laps.Add(ctx, 1)
	analysis := advisor.Analyze(l, p.session.WorldRecord)
	p.log.Info("lap completed",
		log.Int("lap", l.LapNumber),
		log.String("time", model.FormatLapTime(l.LapTimeMs)),
		log.Bool("perfect", analysis.IsPerfect),
		log.Int("advices", len(analysis.Advices)))

	for _, sink := range p.sinks {
		p.callSink(ctx, sink, l, analysis)
	}
	return analysis
}

//nolint:whitespace // can't make both editor and linter happy
func (p *Processor) callSink(
	ctx context.Context,
	sink LapSink,
	l *model.LapData,
	analysis model.StandaloneAnalysis,
) {
	spanCtx, span := p.tracer.Start(ctx, "sink.lapCompleted",
		trace.WithAttributes(attribute.Int("lap", l.LapNumber)))
	defer span.End()
	if err := sink.LapCompleted(spanCtx, p.session, l, analysis); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.log.Error("sink failed",
			log.Int("lap", l.LapNumber),
			log.ErrorField(err))
	}
}

// Flush discards the frames of an unfinished lap.
func (p *Processor) Flush() {
	if len(p.physics) > 0 {
		p.log.Debug("discarding partial lap", log.Int("frames", len(p.physics)))
	}
	p.resetBuffer()
}

// BufferedFrames returns the number of frames of the current lap.
func (p *Processor) BufferedFrames() int {
	return len(p.physics)
}

func (p *Processor) resetBuffer() {
	p.physics = make([]model.PhysicsFrame, 0, cap(p.physics))
	p.graphics = make([]model.GraphicsFrame, 0, cap(p.graphics))
}
