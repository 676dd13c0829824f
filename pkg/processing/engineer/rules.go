package engineer

import (
	"fmt"
	"math"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
)

const (
	pressureMinSpeed    = 10
	wearWarning         = 80 // percent remaining
	wearCritical        = 60
	camberMinSpeed      = 30
	camberMaxSpread     = 12 // °C inner minus outer
	camberMinSpread     = -camberMaxSpread / 4
	tyreTempMinSpeed    = 80
	brakeTempCritical   = 750
	brakeTempWarning    = 650
	lockupBiasFactor    = 2
	lockupBiasMinCount  = 10
	minWindowFrames     = 50
	wheelspinMaxPerc    = 5
	coastingMaxPerc     = 15
	smoothnessMin       = 60
	steeringMinSamples  = 20
	steeringReversalMin = 0.02
	steeringMaxPerc     = 30
	bottomingMaxPerc    = 5
	fuelWarningLaps     = 2
)

// ruleInput is the view of one tick the rule groups work on.
type ruleInput struct {
	phys     *model.PhysicsFrame
	gfx      *model.GraphicsFrame
	compound Compound
	stats    *windowStats
	derived  Derived
	style    *DrivingStyle
}

type ruleGroup func(in *ruleInput) []alert

var ruleGroups = []ruleGroup{
	pressureRules,
	wearRules,
	camberRules,
	tyreTempRules,
	brakeTempRules,
	brakeBiasRules,
	drivingRules,
	fuelRules,
	ffbRules,
}

func wheelKey(kind AlertKind, w model.Wheel) AlertKey {
	return AlertKey{Kind: kind, Wheel: w}
}

func globalKey(kind AlertKind) AlertKey {
	return AlertKey{Kind: kind, Wheel: noWheel}
}

func pressureRules(in *ruleInput) []alert {
	if in.phys.SpeedKmh <= pressureMinSpeed {
		return nil
	}
	c := in.compound
	var ret []alert
	for _, w := range model.Wheels() {
		p := in.phys.WheelsPressure[w]
		if !model.Finite(p) || p <= 0 {
			continue
		}
		dev := p - c.TargetPressure
		if abs32(dev) <= c.Tolerance {
			continue
		}
		sev := model.SeverityWarning
		if abs32(dev) > 2*c.Tolerance {
			sev = model.SeverityCritical
		}
		action := fmt.Sprintf("Inflate %s by %.1f psi", w, -dev)
		state := "low"
		if dev > 0 {
			action = fmt.Sprintf("Deflate %s by %.1f psi", w, dev)
			state = "high"
		}
		ret = append(ret, alert{
			key: wheelKey(AlertPressure, w),
			rec: model.Recommendation{
				Component: model.ComponentTyres,
				Category:  model.CategoryPressure,
				Severity:  sev,
				Message: fmt.Sprintf("%s pressure %s: %.1f psi (%s target %.1f)",
					w, state, p, c.Name, c.TargetPressure),
				Action: action,
				Parameters: []model.Parameter{{
					Name: w.String() + " pressure", Current: p, Target: c.TargetPressure, Unit: "psi",
				}},
				Confidence: 0.9,
			},
		})
	}
	return ret
}

func wearRules(in *ruleInput) []alert {
	var ret []alert
	for _, w := range model.Wheels() {
		wear := in.phys.TyreWear[w]
		if wear <= 0 || wear >= wearWarning {
			continue
		}
		sev := model.SeverityWarning
		if wear < wearCritical {
			sev = model.SeverityCritical
		}
		ret = append(ret, alert{
			key: wheelKey(AlertWear, w),
			rec: model.Recommendation{
				Component:  model.ComponentTyres,
				Category:   model.CategoryWear,
				Severity:   sev,
				Message:    fmt.Sprintf("%s tyre worn, %.0f%% remaining", w, wear),
				Action:     "Plan a tyre change",
				Confidence: 0.8,
			},
		})
	}
	return ret
}

func camberRules(in *ruleInput) []alert {
	if in.phys.SpeedKmh <= camberMinSpeed {
		return nil
	}
	var ret []alert
	for _, w := range model.Wheels() {
		inner, outer := in.phys.TyreTempI[w], in.phys.TyreTempO[w]
		if inner <= 0 || outer <= 0 {
			continue
		}
		spread := inner - outer
		var msg, action string
		switch {
		case spread > camberMaxSpread:
			msg = fmt.Sprintf("%s inner edge %.0f°C hotter than outer edge", w, spread)
			action = "Reduce negative camber"
		case spread < camberMinSpread:
			msg = fmt.Sprintf("%s outer edge %.0f°C hotter than inner edge", w, -spread)
			action = "Increase negative camber"
		default:
			continue
		}
		ret = append(ret, alert{
			key: wheelKey(AlertCamber, w),
			rec: model.Recommendation{
				Component: model.ComponentSuspension,
				Category:  model.CategoryCamber,
				Severity:  model.SeverityInfo,
				Message:   msg,
				Action:    action,
				Parameters: []model.Parameter{{
					Name: w.String() + " temp spread", Current: spread, Target: camberMaxSpread / 2, Unit: "°C",
				}},
				Confidence: 0.6,
			},
		})
	}
	return ret
}

func tyreTempRules(in *ruleInput) []alert {
	if in.phys.SpeedKmh <= tyreTempMinSpeed {
		return nil
	}
	c := in.compound
	var ret []alert
	for _, w := range model.Wheels() {
		temp := (in.phys.TyreTempI[w] + in.phys.TyreTempM[w] + in.phys.TyreTempO[w]) / 3
		if temp <= 0 {
			continue
		}
		switch {
		case temp < c.OptimalTempMin:
			ret = append(ret, alert{
				key: wheelKey(AlertColdTyre, w),
				rec: model.Recommendation{
					Component: model.ComponentTyres,
					Category:  model.CategoryTemperature,
					Severity:  model.SeverityInfo,
					Message:   fmt.Sprintf("%s tyre cold (%.0f°C)", w, temp),
					Action:    "Push harder to bring the tyre into its window or raise pressure",
					Parameters: []model.Parameter{{
						Name: w.String() + " temp", Current: temp, Target: c.OptimalTempMin, Unit: "°C",
					}},
					Confidence: 0.7,
				},
			})
		case temp > c.OptimalTempMax:
			ret = append(ret, alert{
				key: wheelKey(AlertHotTyre, w),
				rec: model.Recommendation{
					Component: model.ComponentTyres,
					Category:  model.CategoryTemperature,
					Severity:  model.SeverityWarning,
					Message:   fmt.Sprintf("%s tyre overheating (%.0f°C)", w, temp),
					Action:    "Reduce sliding and manage the tyre through fast corners",
					Parameters: []model.Parameter{{
						Name: w.String() + " temp", Current: temp, Target: c.OptimalTempMax, Unit: "°C",
					}},
					Confidence: 0.7,
				},
			})
		}
	}
	return ret
}

func brakeTempRules(in *ruleInput) []alert {
	var ret []alert
	for _, w := range model.Wheels() {
		temp := in.phys.BrakeTemp[w]
		if !model.Finite(temp) || temp <= brakeTempWarning {
			continue
		}
		sev, msg := model.SeverityWarning, fmt.Sprintf("%s brake running hot (%.0f°C)", w, temp)
		if temp > brakeTempCritical {
			sev, msg = model.SeverityCritical, fmt.Sprintf("%s brake overheating (%.0f°C)", w, temp)
		}
		ret = append(ret, alert{
			key: wheelKey(AlertBrakeTemp, w),
			rec: model.Recommendation{
				Component: model.ComponentBrakes,
				Category:  model.CategoryTemperature,
				Severity:  sev,
				Message:   msg,
				Action:    "Open the brake ducts",
				Parameters: []model.Parameter{{
					Name: w.String() + " brake temp", Current: temp, Target: brakeTempWarning, Unit: "°C",
				}},
				Confidence: 0.85,
			},
		})
	}
	return ret
}

func brakeBiasRules(in *ruleInput) []alert {
	front, rear := in.stats.frontLockups, in.stats.rearLockups
	var msg, action string
	switch {
	case front >= lockupBiasMinCount && front > lockupBiasFactor*rear:
		msg = fmt.Sprintf("Front wheels lock more often (%d vs %d)", front, rear)
		action = "Move brake bias rearward"
	case rear >= lockupBiasMinCount && rear > lockupBiasFactor*front:
		msg = fmt.Sprintf("Rear wheels lock more often (%d vs %d)", rear, front)
		action = "Move brake bias forward"
	default:
		return nil
	}
	return []alert{{
		key: globalKey(AlertBrakeBias),
		rec: model.Recommendation{
			Component:  model.ComponentBrakes,
			Category:   model.CategoryBalance,
			Severity:   model.SeverityWarning,
			Message:    msg,
			Action:     action,
			Confidence: 0.75,
		},
	}}
}

//nolint:funlen // one block per driving error
func drivingRules(in *ruleInput) []alert {
	var ret []alert
	st := in.stats
	if st.totalFrames >= minWindowFrames {
		if spin := st.ratio(st.wheelspin); spin > wheelspinMaxPerc {
			ret = append(ret, alert{
				key: globalKey(AlertWheelspin),
				rec: model.Recommendation{
					Component:  model.ComponentDriver,
					Category:   model.CategoryTechnique,
					Severity:   model.SeverityWarning,
					Message:    fmt.Sprintf("Wheelspin on %.0f%% of frames", spin),
					Action:     "Apply throttle progressively on corner exit or raise traction control",
					Confidence: 0.7,
				},
			})
		}
		if coast := st.ratio(st.coasting); coast > coastingMaxPerc {
			ret = append(ret, alert{
				key: globalKey(AlertCoasting),
				rec: model.Recommendation{
					Component: model.ComponentDriver,
					Category:  model.CategoryTechnique,
					Severity:  model.SeverityInfo,
					Message:   fmt.Sprintf("Coasting on %.0f%% of frames", coast),
					Action:    "Carry the brake deeper or get back on throttle earlier",
					Parameters: []model.Parameter{{
						Name: "coasting", Current: coast, Target: coastingMaxPerc, Unit: "%",
					}},
					Confidence: 0.6,
				},
			})
		}
		for _, w := range model.Wheels() {
			perc := st.ratio(st.bottoming[w])
			if perc <= bottomingMaxPerc {
				continue
			}
			ret = append(ret, alert{
				key: wheelKey(AlertBottoming, w),
				rec: model.Recommendation{
					Component:  model.ComponentSuspension,
					Category:   model.CategoryRideHeight,
					Severity:   model.SeverityWarning,
					Message:    fmt.Sprintf("%s bottoming out on %.0f%% of frames", w, perc),
					Action:     "Raise ride height or stiffen the bump stops",
					Confidence: 0.65,
				},
			})
		}
	}
	if in.style.Smoothness < smoothnessMin {
		ret = append(ret, alert{
			key: globalKey(AlertSmoothness),
			rec: model.Recommendation{
				Component:  model.ComponentDriver,
				Category:   model.CategoryTechnique,
				Severity:   model.SeverityInfo,
				Message:    fmt.Sprintf("Pedal inputs are abrupt (smoothness %.0f)", in.style.Smoothness),
				Action:     "Squeeze the pedals instead of stabbing them",
				Confidence: 0.5,
			},
		})
	}
	if perc, ok := steeringReversals(st.inputs); ok && perc > steeringMaxPerc {
		ret = append(ret, alert{
			key: globalKey(AlertSteering),
			rec: model.Recommendation{
				Component:  model.ComponentDriver,
				Category:   model.CategoryTechnique,
				Severity:   model.SeverityInfo,
				Message:    fmt.Sprintf("Frequent steering corrections (%.0f%% reversals)", perc),
				Action:     "Use one steering input per corner and look further ahead",
				Confidence: 0.5,
			},
		})
	}
	return ret
}

// steeringReversals returns the share of sampled inputs where the steering
// direction changed by more than steeringReversalMin.
func steeringReversals(inputs []inputSample) (float32, bool) {
	if len(inputs) < steeringMinSamples {
		return 0, false
	}
	reversals := 0
	var lastDir float32
	for i := 1; i < len(inputs); i++ {
		d := inputs[i].steer - inputs[i-1].steer
		if abs32(d) <= steeringReversalMin {
			continue
		}
		dir := float32(math.Copysign(1, float64(d)))
		if lastDir != 0 && dir != lastDir {
			reversals++
		}
		lastDir = dir
	}
	return float32(reversals) / float32(len(inputs)-1) * 100, true
}

func fuelRules(in *ruleInput) []alert {
	fuelPerLap := in.gfx.FuelXLap
	lapsLeft := in.derived.FuelLapsRemaining
	if fuelPerLap <= 0 {
		return nil
	}
	rec := model.Recommendation{
		Component:  model.ComponentFuel,
		Category:   model.CategoryStrategy,
		Confidence: 0.8,
	}
	predicted := in.derived.PredictedLapTime
	if in.gfx.SessionTimeLeft > 0 && predicted > 0 {
		lapsToGo := float32(math.Ceil(float64(in.gfx.SessionTimeLeft) / float64(predicted)))
		if lapsLeft < lapsToGo {
			needed := lapsToGo * fuelPerLap
			rec.Severity = model.SeverityCritical
			rec.Message = fmt.Sprintf("Not enough fuel to finish: %.1f laps left, %.0f laps to go",
				lapsLeft, lapsToGo)
			rec.Action = fmt.Sprintf("Add %.1f l at the next stop or save fuel", needed-in.phys.Fuel)
			rec.Parameters = []model.Parameter{{
				Name: "fuel", Current: in.phys.Fuel, Target: needed, Unit: "l",
			}}
			return []alert{{key: globalKey(AlertFuel), rec: rec}}
		}
	}
	if lapsLeft < fuelWarningLaps {
		rec.Severity = model.SeverityWarning
		rec.Message = fmt.Sprintf("Fuel low: %.1f laps remaining", lapsLeft)
		rec.Action = "Box for fuel"
		rec.Parameters = []model.Parameter{{
			Name: "fuel", Current: in.phys.Fuel, Target: fuelWarningLaps * fuelPerLap, Unit: "l",
		}}
		return []alert{{key: globalKey(AlertFuel), rec: rec}}
	}
	return nil
}

func ffbRules(in *ruleInput) []alert {
	if abs32(in.phys.FinalFF) <= ffbClipLevel {
		return nil
	}
	return []alert{{
		key: globalKey(AlertFFBClip),
		rec: model.Recommendation{
			Component: model.ComponentElectronics,
			Category:  model.CategoryFFB,
			Severity:  model.SeverityWarning,
			Message:   "Force feedback is clipping",
			Action:    "Lower the FFB gain",
			Parameters: []model.Parameter{{
				Name: "clipping", Current: in.stats.ratio(in.stats.ffbClipFrames), Target: 0, Unit: "%",
			}},
			Confidence: 0.9,
		},
	}}
}
