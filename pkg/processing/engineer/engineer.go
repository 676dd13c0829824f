// Package engineer produces ranked live recommendations from the per tick telemetry.
package engineer

import (
	"slices"
	"time"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/model"
)

const (
	DefaultHistorySize  = 3000 // frames
	DefaultHoldDuration = 2 * time.Second
)

// Engineer is owned by one connected session and is not safe for concurrent use.
type Engineer struct {
	historySize int
	compounds   *CompoundTable
	stats       windowStats
	style       DrivingStyle
	derived     Derived
	lastPhys    model.PhysicsFrame
	lastGfx     model.GraphicsFrame
	alerts      *hysteresis
	hold        time.Duration
	l           *log.Logger
}

type Option func(e *Engineer)

func WithHistorySize(n int) Option {
	return func(e *Engineer) {
		if n > 0 {
			e.historySize = n
		}
	}
}

func WithHoldDuration(d time.Duration) Option {
	return func(e *Engineer) {
		if d >= 0 {
			e.hold = d
		}
	}
}

func WithCompounds(t *CompoundTable) Option {
	return func(e *Engineer) {
		if t != nil {
			e.compounds = t
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engineer) {
		e.l = l
	}
}

func NewEngineer(opts ...Option) *Engineer {
	e := &Engineer{
		historySize: DefaultHistorySize,
		hold:        DefaultHoldDuration,
		compounds:   DefaultCompounds(),
		stats:       newWindowStats(),
		style:       newDrivingStyle(),
		l:           log.Default().Named("engineer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.alerts = newHysteresis(e.hold, e.l)
	return e
}

// Tick processes one frame pair and returns the currently held
// recommendations, sorted by severity and confidence (both descending).
// NaN or infinite channels are replaced by their last finite value.
func (e *Engineer) Tick(
	phys *model.PhysicsFrame,
	gfx *model.GraphicsFrame,
	now time.Time,
) []model.Recommendation {
	p, g := *phys, *gfx
	if held := p.HoldFinite(&e.lastPhys) + g.HoldFinite(&e.lastGfx); held > 0 {
		e.l.Debug("replaced non-finite samples", log.Int("values", held))
	}
	e.lastPhys, e.lastGfx = p, g
	e.updateStats(&p, &g)
	e.style.update(&p)
	return e.analyzeLive(&p, &g, now)
}

func (e *Engineer) updateStats(phys *model.PhysicsFrame, gfx *model.GraphicsFrame) {
	if e.stats.totalFrames > e.historySize {
		e.l.Debug("resetting analysis window", log.Int("frames", e.stats.totalFrames))
		e.stats.reset()
	}
	e.stats.update(phys)
	e.derived = computeDerived(phys, gfx)
}

func (e *Engineer) analyzeLive(
	phys *model.PhysicsFrame,
	gfx *model.GraphicsFrame,
	now time.Time,
) []model.Recommendation {
	in := &ruleInput{
		phys:     phys,
		gfx:      gfx,
		compound: e.compounds.Lookup(gfx.TyreCompound),
		stats:    &e.stats,
		derived:  e.derived,
		style:    &e.style,
	}
	fired := make([]alert, 0)
	for _, group := range ruleGroups {
		fired = append(fired, group(in)...)
	}
	ret := e.alerts.apply(now, fired)
	slices.SortStableFunc(ret, model.CompareRecommendations)
	return ret
}

// SetCompounds replaces the compound table. Must be called from the tick goroutine.
func (e *Engineer) SetCompounds(t *CompoundTable) {
	if t != nil {
		e.compounds = t
	}
}

func (e *Engineer) Style() DrivingStyle {
	return e.style
}

func (e *Engineer) Derived() Derived {
	return e.derived
}

// WindowFrames returns the number of frames in the current analysis window.
func (e *Engineer) WindowFrames() int {
	return e.stats.totalFrames
}

// Reset drops window counters, style metrics, held alerts and the last finite
// channel values.
func (e *Engineer) Reset() {
	e.stats = newWindowStats()
	e.style = newDrivingStyle()
	e.derived = Derived{}
	e.lastPhys, e.lastGfx = model.PhysicsFrame{}, model.GraphicsFrame{}
	e.alerts.clear()
}
