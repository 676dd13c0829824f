package model

import "math"

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func holdValue(v *float32, last float32) bool {
	if Finite(*v) {
		return false
	}
	*v = last
	return true
}

func holdWheels(v *PerWheel, last *PerWheel) int {
	n := 0
	for i := range v {
		n += boolCount(holdValue(&v[i], last[i]))
	}
	return n
}

func boolCount(b bool) int {
	if b {
		return 1
	}
	return 0
}

// HoldFinite replaces every NaN or infinite channel of p with the value of the
// same channel in last. last is expected to be finite itself.
// Returns the number of replaced values.
func (p *PhysicsFrame) HoldFinite(last *PhysicsFrame) int {
	n := 0
	for _, pair := range [][2]*float32{
		{&p.Gas, &last.Gas},
		{&p.Brake, &last.Brake},
		{&p.SteerAngle, &last.SteerAngle},
		{&p.SpeedKmh, &last.SpeedKmh},
		{&p.Fuel, &last.Fuel},
		{&p.FinalFF, &last.FinalFF},
		{&p.PerformanceMeter, &last.PerformanceMeter},
		{&p.AirTemp, &last.AirTemp},
		{&p.RoadTemp, &last.RoadTemp},
		{&p.AccG[0], &last.AccG[0]},
		{&p.AccG[1], &last.AccG[1]},
		{&p.AccG[2], &last.AccG[2]},
		{&p.RideHeight[0], &last.RideHeight[0]},
		{&p.RideHeight[1], &last.RideHeight[1]},
	} {
		n += boolCount(holdValue(pair[0], *pair[1]))
	}
	for _, pair := range [][2]*PerWheel{
		{&p.WheelSlip, &last.WheelSlip},
		{&p.WheelLoad, &last.WheelLoad},
		{&p.WheelsPressure, &last.WheelsPressure},
		{&p.TyreWear, &last.TyreWear},
		{&p.TyreTempI, &last.TyreTempI},
		{&p.TyreTempM, &last.TyreTempM},
		{&p.TyreTempO, &last.TyreTempO},
		{&p.SuspensionTravel, &last.SuspensionTravel},
		{&p.BrakeTemp, &last.BrakeTemp},
		{&p.SlipRatio, &last.SlipRatio},
		{&p.SlipAngle, &last.SlipAngle},
	} {
		n += holdWheels(pair[0], pair[1])
	}
	return n
}

// HoldFinite is the graphics counterpart of PhysicsFrame.HoldFinite.
func (g *GraphicsFrame) HoldFinite(last *GraphicsFrame) int {
	n := 0
	for _, pair := range [][2]*float32{
		{&g.NormalizedCarPosition, &last.NormalizedCarPosition},
		{&g.CarCoordinates[0], &last.CarCoordinates[0]},
		{&g.CarCoordinates[1], &last.CarCoordinates[1]},
		{&g.CarCoordinates[2], &last.CarCoordinates[2]},
		{&g.SurfaceGrip, &last.SurfaceGrip},
		{&g.FuelXLap, &last.FuelXLap},
		{&g.SessionTimeLeft, &last.SessionTimeLeft},
	} {
		n += boolCount(holdValue(pair[0], *pair[1]))
	}
	return n
}
