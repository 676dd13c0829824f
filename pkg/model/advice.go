package model

import "fmt"

// Advice is one finding of the post-lap advisor. Severity ranges from 1 (hint) to 3 (must fix).
type Advice struct {
	Zone     string `json:"zone"`
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
	Severity int    `json:"severity"`
}

// StandaloneAnalysis is the advisor result for one lap.
type StandaloneAnalysis struct {
	IsPerfect bool     `json:"isPerfect"`
	Advices   []Advice `json:"advices"`
}

// Severity of a live recommendation. Ordered Info < Warning < Critical.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	case SeverityCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Info":
		*s = SeverityInfo
	case "Warning":
		*s = SeverityWarning
	case "Critical":
		*s = SeverityCritical
	default:
		return fmt.Errorf("unknown severity %q", string(text))
	}
	return nil
}

// Parameter carries the value the recommendation wants to change.
type Parameter struct {
	Name    string  `json:"name"`
	Current float32 `json:"current"`
	Target  float32 `json:"target"`
	Unit    string  `json:"unit"`
}

type Component string

const (
	ComponentTyres       Component = "Tyres"
	ComponentBrakes      Component = "Brakes"
	ComponentSuspension  Component = "Suspension"
	ComponentFuel        Component = "Fuel"
	ComponentDriver      Component = "Driver"
	ComponentElectronics Component = "Electronics"
)

type Category string

const (
	CategoryPressure    Category = "Pressure"
	CategoryWear        Category = "Wear"
	CategoryCamber      Category = "Camber"
	CategoryTemperature Category = "Temperature"
	CategoryBalance     Category = "Balance"
	CategoryTechnique   Category = "Technique"
	CategoryStrategy    Category = "Strategy"
	CategoryFFB         Category = "FFB"
	CategoryRideHeight  Category = "RideHeight"
)

// Recommendation is one live coaching hint.
type Recommendation struct {
	Component  Component   `json:"component"`
	Category   Category    `json:"category"`
	Severity   Severity    `json:"severity"`
	Message    string      `json:"message"`
	Action     string      `json:"action"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Confidence float32     `json:"confidence"`
}

// CompareRecommendations orders by severity, then confidence, both descending.
// Usable with slices.SortStableFunc.
func CompareRecommendations(a, b Recommendation) int {
	if a.Severity != b.Severity {
		if a.Severity > b.Severity {
			return -1
		}
		return 1
	}
	switch {
	case a.Confidence > b.Confidence:
		return -1
	case a.Confidence < b.Confidence:
		return 1
	}
	return 0
}
