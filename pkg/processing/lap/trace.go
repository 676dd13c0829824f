package lap

import (
	"cmp"
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
)

const (
	nearOrigin     = 0.1 // coordinates within this range are sensor noise
	cornerMinSpeed = 30.0
	cornerMinLatG  = 0.5
)

// buildTrace samples every step-th frame and returns the points sorted by
// track distance together with their XZ bounds.
// Points near the world origin are kept in the trace but not used for the bounds.
//
//nolint:whitespace // editor/linter issue
func buildTrace(
	phys []model.PhysicsFrame,
	gfx []model.GraphicsFrame,
	step int,
) ([]model.TelemetryPoint, model.Bounds) {
	trace := make([]model.TelemetryPoint, 0, len(phys)/step+1)
	var bounds model.Bounds
	seeded := false
	for i := 0; i < len(phys); i += step {
		p := &phys[i]
		g := graphicsAt(gfx, i)
		x, z := g.CarCoordinates[0], g.CarCoordinates[2]
		trace = append(trace, model.TelemetryPoint{
			Distance: g.NormalizedCarPosition,
			TimeMs:   g.ICurrentTime,
			Speed:    p.SpeedKmh,
			Gas:      p.Gas,
			Brake:    p.Brake,
			Steer:    p.SteerAngle,
			Gear:     p.Gear,
			LatG:     p.LatG(),
			LonG:     p.LonG(),
			Slip:     p.WheelSlip.Avg(),
			X:        x,
			Z:        z,
		})
		if abs32(x) <= nearOrigin && abs32(z) <= nearOrigin {
			continue
		}
		if !seeded {
			bounds = model.Bounds{MinX: x, MaxX: x, MinZ: z, MaxZ: z}
			seeded = true
			continue
		}
		bounds.MinX = min(bounds.MinX, x)
		bounds.MaxX = max(bounds.MaxX, x)
		bounds.MinZ = min(bounds.MinZ, z)
		bounds.MaxZ = max(bounds.MaxZ, z)
	}
	// samples around the start/finish line may arrive with a distance from the
	// previous lap, so the trace is not ordered by construction
	slices.SortStableFunc(trace, func(a, b model.TelemetryPoint) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return trace, bounds
}

// cornerSpeed is the mean speed of trace points taken while cornering.
func cornerSpeed(trace []model.TelemetryPoint) float32 {
	corner := lo.Filter(trace, func(p model.TelemetryPoint, _ int) bool {
		return p.Speed > cornerMinSpeed && math.Abs(float64(p.LatG)) > cornerMinLatG
	})
	if len(corner) == 0 {
		return 0
	}
	return lo.SumBy(corner, func(p model.TelemetryPoint) float32 { return p.Speed }) /
		float32(len(corner))
}
