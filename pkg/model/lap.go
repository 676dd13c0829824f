package model

import "fmt"

// TelemetryPoint is one resampled sample of a lap trace.
type TelemetryPoint struct {
	Distance float32 `json:"distance"` // normalized track position [0,1]
	TimeMs   int32   `json:"timeMs"`
	Speed    float32 `json:"speed"`
	Gas      float32 `json:"gas"`
	Brake    float32 `json:"brake"`
	Steer    float32 `json:"steer"`
	Gear     int32   `json:"gear"`
	LatG     float32 `json:"latG"`
	LonG     float32 `json:"lonG"`
	Slip     float32 `json:"slip"` // mean wheel slip
	X        float32 `json:"x"`
	Z        float32 `json:"z"`
}

// Bounds is the XZ bounding box of a trace.
type Bounds struct {
	MinX float32 `json:"minX"`
	MaxX float32 `json:"maxX"`
	MinZ float32 `json:"minZ"`
	MaxZ float32 `json:"maxZ"`
}

// DamperHistogram holds the share (percent of active samples) of suspension
// velocity samples per bucket.
type DamperHistogram struct {
	SlowBump    float32 `json:"slowBump"`
	FastBump    float32 `json:"fastBump"`
	SlowRebound float32 `json:"slowRebound"`
	FastRebound float32 `json:"fastRebound"`
}

// FastBump returns the fast bump share of every wheel.
func (l *LapData) FastBump() PerWheel {
	var ret PerWheel
	for i := range l.Damper {
		ret[i] = l.Damper[i].FastBump
	}
	return ret
}

// RadarStats are scores in [0,1] derived from one lap.
type RadarStats struct {
	Smoothness     float32 `json:"smoothness"`
	Aggression     float32 `json:"aggression"`
	Consistency    float32 `json:"consistency"`
	CarControl     float32 `json:"carControl"`
	TyreManagement float32 `json:"tyreManagement"`
}

// LapData is the analytical record of one completed lap.
// It is created once when the lap completes and not modified afterwards.
type LapData struct {
	LapNumber    int      `json:"lapNumber"`
	LapTimeMs    int32    `json:"lapTimeMs"`
	SectorsMs    [3]int32 `json:"sectorsMs"`
	Car          string   `json:"car"`
	Track        string   `json:"track"`
	TyreCompound string   `json:"tyreCompound"`

	AirTemp   float32 `json:"airTemp"`
	RoadTemp  float32 `json:"roadTemp"`
	TrackGrip float32 `json:"trackGrip"` // percent

	MaxSpeed       float32 `json:"maxSpeed"`
	AvgSpeed       float32 `json:"avgSpeed"`
	AvgCornerSpeed float32 `json:"avgCornerSpeed"`
	FuelUsed       float32 `json:"fuelUsed"`
	GearShifts     int     `json:"gearShifts"`
	Samples        int     `json:"samples"` // number of physics frames

	FullThrottlePercent float32 `json:"fullThrottlePercent"`
	CoastingPercent     float32 `json:"coastingPercent"`
	PedalOverlapPercent float32 `json:"pedalOverlapPercent"`
	TrailBrakingScore   float32 `json:"trailBrakingScore"`
	ThrottleSmoothness  float32 `json:"throttleSmoothness"`
	SteeringSmoothness  float32 `json:"steeringSmoothness"`
	GripUsagePercent    float32 `json:"gripUsagePercent"`
	ConsistencyScore    float32 `json:"consistencyScore"`
	TyreScore           float32 `json:"tyreScore"`

	OversteerCount  int `json:"oversteerCount"`
	UndersteerCount int `json:"understeerCount"`
	LockupCount     int `json:"lockupCount"`

	PeakLatG float32 `json:"peakLatG"`
	PeakLonG float32 `json:"peakLonG"` // most negative longitudinal G (braking)

	MaxBrakeTemp      PerWheel `json:"maxBrakeTemp"`
	TyreTempInner     PerWheel `json:"tyreTempInner"`
	TyreTempMiddle    PerWheel `json:"tyreTempMiddle"`
	TyreTempOuter     PerWheel `json:"tyreTempOuter"`
	TyreTempAvg       PerWheel `json:"tyreTempAvg"`
	AvgSuspension     PerWheel `json:"avgSuspension"`
	AvgTyrePressure   PerWheel `json:"avgTyrePressure"`
	PressureDeviation PerWheel `json:"pressureDeviation"`

	Damper [4]DamperHistogram `json:"damper"`

	TelemetryTrace []TelemetryPoint `json:"telemetryTrace"`
	TraceBounds    Bounds           `json:"traceBounds"`
	Radar          RadarStats       `json:"radar"`
}

// SectorSum returns the sum of the three sector times.
func (l *LapData) SectorSum() int32 {
	return l.SectorsMs[0] + l.SectorsMs[1] + l.SectorsMs[2]
}

// FormatLapTime renders ms as m:ss.SSS.
func FormatLapTime(ms int32) string {
	if ms < 0 {
		return "-" + FormatLapTime(-ms)
	}
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}
