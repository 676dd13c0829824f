// Package advisor critiques a completed lap with a fixed set of rules.
package advisor

import (
	"fmt"
	"math"

	"github.com/aarondl/opt/omit"
	"github.com/samber/lo"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/session"
)

const (
	TargetPressure       = 27.5 // psi
	PressureTolerance    = 0.5
	PaceGapToRecord      = 5000 // ms
	MinTrackGrip         = 96.0 // percent
	MaxBrakeTemp         = 750.0
	MaxFrontFastBumpPerc = 35.0
)

type (
	input struct {
		lap         *model.LapData
		worldRecord omit.Val[int32]
	}
	// rule produces an advice if check reports a finding.
	rule struct {
		zone     string
		severity int
		check    func(in *input) (problem, solution string, ok bool)
	}
)

var rules = buildRules()

//nolint:funlen // rule table
func buildRules() []rule {
	ret := lo.Map(model.Wheels(), func(w model.Wheel, _ int) rule {
		return pressureRule(w)
	})
	return append(ret,
		rule{
			zone:     "Pace",
			severity: 1,
			check: func(in *input) (problem, solution string, ok bool) {
				wr, set := in.worldRecord.Get()
				if !set || wr <= 0 {
					return "", "", false
				}
				gap := in.lap.LapTimeMs - wr
				if gap <= PaceGapToRecord {
					return "", "", false
				}
				return fmt.Sprintf("%.3fs off the world record (%s)",
						float64(gap)/1000, model.FormatLapTime(wr)),
					"Compare braking points and minimum corner speeds with the record lap",
					true
			},
		},
		rule{
			zone:     "Track",
			severity: 2,
			check: func(in *input) (problem, solution string, ok bool) {
				grip := in.lap.TrackGrip
				if grip <= 0 || grip >= MinTrackGrip {
					return "", "", false
				}
				return fmt.Sprintf("Low track grip (%.1f%%)", grip),
					"Brake earlier and be gentle on throttle until the track rubbers in",
					true
			},
		},
		rule{
			zone:     "Brakes",
			severity: 3,
			check: func(in *input) (problem, solution string, ok bool) {
				temp, w := in.lap.MaxBrakeTemp.Max()
				if temp <= MaxBrakeTemp {
					return "", "", false
				}
				return fmt.Sprintf("%s brake overheating (%.0f°C)", w, temp),
					"Open the brake ducts or move the brake bias away from the hot axle",
					true
			},
		},
		rule{
			zone:     "Brakes",
			severity: 3,
			check: func(in *input) (problem, solution string, ok bool) {
				if in.lap.LockupCount <= 0 {
					return "", "", false
				}
				return fmt.Sprintf("Wheel lockups detected (%d frames)", in.lap.LockupCount),
					"Reduce initial brake pressure or brake force, release earlier when turning in",
					true
			},
		},
		rule{
			zone:     "Suspension",
			severity: 2,
			check: func(in *input) (problem, solution string, ok bool) {
				fast := in.lap.FastBump().FrontAvg()
				if fast <= MaxFrontFastBumpPerc {
					return "", "", false
				}
				return fmt.Sprintf("Front suspension bottoming out (%.0f%% fast bump)", fast),
					"Raise the front ride height or stiffen the fast bump damping",
					true
			},
		},
	)
}

func pressureRule(w model.Wheel) rule {
	return rule{
		zone:     fmt.Sprintf("Tyres %s", w),
		severity: 3,
		check: func(in *input) (problem, solution string, ok bool) {
			avg := in.lap.AvgTyrePressure[w]
			if avg <= 0 {
				return "", "", false
			}
			dev := float64(avg) - TargetPressure
			if math.Abs(dev) <= PressureTolerance {
				return "", "", false
			}
			if dev > 0 {
				return fmt.Sprintf("%s pressure %.1f psi is %.1f psi above target", w, avg, dev),
					fmt.Sprintf("Deflate %s by %.1f psi", w, dev),
					true
			}
			return fmt.Sprintf("%s pressure %.1f psi is %.1f psi below target", w, avg, -dev),
				fmt.Sprintf("Inflate %s by %.1f psi", w, -dev),
				true
		},
	}
}

// Analyze runs every rule on lap. All rules are evaluated, the result keeps rule order.
func Analyze(lap *model.LapData, worldRecord omit.Val[int32]) model.StandaloneAnalysis {
	in := &input{lap: lap, worldRecord: worldRecord}
	advices := make([]model.Advice, 0)
	for i := range rules {
		if problem, solution, ok := rules[i].check(in); ok {
			advices = append(advices, model.Advice{
				Zone:     rules[i].zone,
				Problem:  problem,
				Solution: solution,
				Severity: rules[i].severity,
			})
		}
	}
	return model.StandaloneAnalysis{IsPerfect: len(advices) == 0, Advices: advices}
}

// AnalyzeLast runs Analyze on the latest lap of the session.
func AnalyzeLast(s *session.State) (model.StandaloneAnalysis, bool) {
	lap, ok := s.LastLap()
	if !ok {
		return model.StandaloneAnalysis{IsPerfect: true, Advices: []model.Advice{}}, false
	}
	return Analyze(lap, s.WorldRecord), true
}
