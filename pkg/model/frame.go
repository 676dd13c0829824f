package model

// Wheel indexes the four-wheel arrays. The order is fixed: FL, FR, RL, RR.
type Wheel int

const (
	FL Wheel = iota
	FR
	RL
	RR
)

var wheelNames = [4]string{"FL", "FR", "RL", "RR"}

func (w Wheel) String() string {
	if w < FL || w > RR {
		return "??"
	}
	return wheelNames[w]
}

// Wheels returns all wheels in array order.
func Wheels() []Wheel {
	return []Wheel{FL, FR, RL, RR}
}

// PerWheel holds one value per wheel in FL, FR, RL, RR order.
type PerWheel [4]float32

// Avg returns the mean over all four wheels.
func (p PerWheel) Avg() float32 {
	return (p[0] + p[1] + p[2] + p[3]) / 4
}

// Abs returns the absolute value of every wheel.
func (p PerWheel) Abs() PerWheel {
	for i, v := range p {
		if v < 0 {
			p[i] = -v
		}
	}
	return p
}

// FrontAvg returns the mean of FL and FR.
func (p PerWheel) FrontAvg() float32 {
	return (p[FL] + p[FR]) / 2
}

// RearAvg returns the mean of RL and RR.
func (p PerWheel) RearAvg() float32 {
	return (p[RL] + p[RR]) / 2
}

// Max returns the highest value and the wheel it belongs to.
func (p PerWheel) Max() (float32, Wheel) {
	best := FL
	for _, w := range Wheels()[1:] {
		if p[w] > p[best] {
			best = w
		}
	}
	return p[best], best
}

type SessionType int32

const (
	SessionUnknown SessionType = iota - 1
	SessionPractice
	SessionQualify
	SessionRace
	SessionHotlap
	SessionTimeAttack
	SessionDrift
	SessionDrag
)

// PhysicsFrame is the physics channel of one tick.
// AccG uses the simulator convention: [0] lateral, [1] vertical, [2] longitudinal.
// SuspensionTravel is in meters, temperatures in °C, pressures in psi.
type PhysicsFrame struct {
	Gas              float32    `json:"gas"`
	Brake            float32    `json:"brake"`
	SteerAngle       float32    `json:"steerAngle"`
	Gear             int32      `json:"gear"` // 0=R, 1=N, n=gear n-1
	SpeedKmh         float32    `json:"speedKmh"`
	AccG             [3]float32 `json:"accG"`
	WheelSlip        PerWheel   `json:"wheelSlip"`
	WheelLoad        PerWheel   `json:"wheelLoad"`
	WheelsPressure   PerWheel   `json:"wheelsPressure"`
	TyreWear         PerWheel   `json:"tyreWear"`
	TyreTempI        PerWheel   `json:"tyreTempI"`
	TyreTempM        PerWheel   `json:"tyreTempM"`
	TyreTempO        PerWheel   `json:"tyreTempO"`
	SuspensionTravel PerWheel   `json:"suspensionTravel"`
	RideHeight       [2]float32 `json:"rideHeight"`
	BrakeTemp        PerWheel   `json:"brakeTemp"`
	Fuel             float32    `json:"fuel"`
	FinalFF          float32    `json:"finalFF"`
	PerformanceMeter float32    `json:"performanceMeter"` // seconds, delta to best lap
	SlipRatio        PerWheel   `json:"slipRatio"`
	SlipAngle        PerWheel   `json:"slipAngle"`
	AirTemp          float32    `json:"airTemp"`
	RoadTemp         float32    `json:"roadTemp"`
}

// LatG returns the lateral acceleration in G.
func (p *PhysicsFrame) LatG() float32 {
	return p.AccG[0]
}

// LonG returns the longitudinal acceleration in G (negative under braking).
func (p *PhysicsFrame) LonG() float32 {
	return p.AccG[2]
}

// GraphicsFrame is the timing/graphics channel of one tick. Times are in ms.
type GraphicsFrame struct {
	Split                 []int32     `json:"split"` // cumulative sector times
	CompletedLaps         int32       `json:"completedLaps"`
	ICurrentTime          int32       `json:"iCurrentTime"`
	ILastTime             int32       `json:"iLastTime"`
	IBestTime             int32       `json:"iBestTime"`
	NormalizedCarPosition float32     `json:"normalizedCarPosition"`
	CarCoordinates        [3]float32  `json:"carCoordinates"` // world x, y, z
	SurfaceGrip           float32     `json:"surfaceGrip"`
	TyreCompound          string      `json:"tyreCompound"`
	FuelXLap              float32     `json:"fuelXLap"`
	SessionTimeLeft       float32     `json:"sessionTimeLeft"`
	Session               SessionType `json:"session"`
}

// Frame pairs the two channels of one tick.
type Frame struct {
	Physics  PhysicsFrame  `json:"physics"`
	Graphics GraphicsFrame `json:"graphics"`
}
