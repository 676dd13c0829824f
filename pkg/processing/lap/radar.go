package lap

import "github.com/mpapenbr/race-engineer-go/pkg/model"

// each slide/lockup frame costs this much of the car control score,
// relative to the number of samples
const carControlPenalty = 5.0

// Radar derives the five radar scores of a lap. All values are in [0,1].
func Radar(l *model.LapData) model.RadarStats {
	carControl := float32(1)
	if l.Samples > 0 {
		incidents := float32(l.OversteerCount+l.UndersteerCount+l.LockupCount) /
			float32(l.Samples)
		carControl = clamp(1-incidents*carControlPenalty, 0, 1)
	}
	return model.RadarStats{
		Smoothness:     clamp((l.ThrottleSmoothness+l.SteeringSmoothness)/200, 0, 1),
		Aggression:     clamp((l.GripUsagePercent+l.FullThrottlePercent)/200, 0, 1),
		Consistency:    clamp(l.ConsistencyScore/100, 0, 1),
		CarControl:     carControl,
		TyreManagement: clamp(l.TyreScore/100, 0, 1),
	}
}
