package lap

import "github.com/mpapenbr/race-engineer-go/pkg/model"

const (
	damperActiveSpeed = 2.0  // mm/s, slower samples are ignored
	damperFastSpeed   = 30.0 // mm/s, split between slow and fast
)

// damperCounter classifies suspension velocities (mm/s, positive = bump).
type damperCounter struct {
	slowBump, fastBump, slowRebound, fastRebound int
}

func (d *damperCounter) add(velocity float64) {
	switch {
	case velocity > damperFastSpeed:
		d.fastBump++
	case velocity > damperActiveSpeed:
		d.slowBump++
	case velocity < -damperFastSpeed:
		d.fastRebound++
	case velocity < -damperActiveSpeed:
		d.slowRebound++
	}
}

func (d *damperCounter) active() int {
	return d.slowBump + d.fastBump + d.slowRebound + d.fastRebound
}

// histogram returns the bucket shares in percent of the active samples.
func (d *damperCounter) histogram() model.DamperHistogram {
	total := d.active()
	return model.DamperHistogram{
		SlowBump:    ratioPercent(d.slowBump, total),
		FastBump:    ratioPercent(d.fastBump, total),
		SlowRebound: ratioPercent(d.slowRebound, total),
		FastRebound: ratioPercent(d.fastRebound, total),
	}
}
