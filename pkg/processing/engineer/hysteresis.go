package engineer

import (
	"cmp"
	"slices"
	"time"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/model"
)

// AlertKind identifies an alert-prone condition.
type AlertKind int

const (
	AlertPressure AlertKind = iota
	AlertWear
	AlertCamber
	AlertColdTyre
	AlertHotTyre
	AlertBrakeTemp
	AlertBrakeBias
	AlertWheelspin
	AlertCoasting
	AlertSmoothness
	AlertSteering
	AlertBottoming
	AlertFuel
	AlertFFBClip
)

var alertNames = map[AlertKind]string{
	AlertPressure:   "pressure",
	AlertWear:       "wear",
	AlertCamber:     "camber",
	AlertColdTyre:   "coldTyre",
	AlertHotTyre:    "hotTyre",
	AlertBrakeTemp:  "brakeTemp",
	AlertBrakeBias:  "brakeBias",
	AlertWheelspin:  "wheelspin",
	AlertCoasting:   "coasting",
	AlertSmoothness: "smoothness",
	AlertSteering:   "steering",
	AlertBottoming:  "bottoming",
	AlertFuel:       "fuel",
	AlertFFBClip:    "ffbClip",
}

func (k AlertKind) String() string {
	if s, ok := alertNames[k]; ok {
		return s
	}
	return "unknown"
}

// noWheel is used for alerts not bound to a single wheel.
const noWheel model.Wheel = -1

type (
	AlertKey struct {
		Kind  AlertKind
		Wheel model.Wheel
	}
	alert struct {
		key AlertKey
		rec model.Recommendation
	}
	alertState struct {
		lastActive time.Time
		rec        model.Recommendation
	}
)

func (k AlertKey) String() string {
	if k.Wheel == noWheel {
		return k.Kind.String()
	}
	return k.Kind.String() + "." + k.Wheel.String()
}

// hysteresis keeps an alert reported until hold has passed since its
// condition last held.
type hysteresis struct {
	hold   time.Duration
	active map[AlertKey]*alertState
	l      *log.Logger
}

func newHysteresis(hold time.Duration, l *log.Logger) *hysteresis {
	return &hysteresis{hold: hold, active: make(map[AlertKey]*alertState), l: l}
}

// apply registers the alerts fired at now and returns all alerts still held.
// The latest recommendation of a condition replaces the cached one.
func (h *hysteresis) apply(now time.Time, fired []alert) []model.Recommendation {
	for i := range fired {
		st, ok := h.active[fired[i].key]
		if !ok {
			h.l.Debug("alert raised", log.Stringer("key", fired[i].key),
				log.Stringer("severity", fired[i].rec.Severity))
			st = &alertState{}
			h.active[fired[i].key] = st
		}
		st.lastActive = now
		st.rec = fired[i].rec
	}
	keys := make([]AlertKey, 0, len(h.active))
	for k, st := range h.active {
		if now.Sub(st.lastActive) > h.hold {
			h.l.Debug("alert cleared", log.Stringer("key", k))
			delete(h.active, k)
			continue
		}
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b AlertKey) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Wheel, b.Wheel))
	})
	ret := make([]model.Recommendation, 0, len(keys))
	for _, k := range keys {
		ret = append(ret, h.active[k].rec)
	}
	return ret
}

func (h *hysteresis) clear() {
	clear(h.active)
}
