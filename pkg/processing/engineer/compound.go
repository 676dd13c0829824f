package engineer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Compound describes pressure and temperature windows of a tyre compound.
// Pressures in psi, temperatures in °C.
type Compound struct {
	Name           string   `yaml:"name"`
	Match          []string `yaml:"match"`
	TargetPressure float32  `yaml:"targetPressure"`
	Tolerance      float32  `yaml:"tolerance"`
	OptimalTempMin float32  `yaml:"optimalTempMin"`
	OptimalTempMax float32  `yaml:"optimalTempMax"`
}

// CompoundTable is looked up by the compound name reported by the simulator.
// Entries are checked in order, the first match wins.
type CompoundTable struct {
	Compounds []Compound `yaml:"compounds"`
	Default   Compound   `yaml:"default"`
}

func DefaultCompounds() *CompoundTable {
	return &CompoundTable{
		Compounds: []Compound{
			{
				Name: "street", Match: []string{"street"},
				TargetPressure: 32, Tolerance: 2,
				OptimalTempMin: 70, OptimalTempMax: 95,
			},
			{
				Name: "semislick", Match: []string{"semislick", "semi-slick"},
				TargetPressure: 30, Tolerance: 1.5,
				OptimalTempMin: 75, OptimalTempMax: 100,
			},
			{
				Name: "wet", Match: []string{"wet", "rain"},
				TargetPressure: 30, Tolerance: 1.5,
				OptimalTempMin: 40, OptimalTempMax: 70,
			},
			{
				Name: "soft", Match: []string{"soft"},
				TargetPressure: 27.5, Tolerance: 1,
				OptimalTempMin: 80, OptimalTempMax: 100,
			},
			{
				Name: "medium", Match: []string{"medium"},
				TargetPressure: 27.5, Tolerance: 1,
				OptimalTempMin: 85, OptimalTempMax: 105,
			},
			{
				Name: "hard", Match: []string{"hard"},
				TargetPressure: 27.5, Tolerance: 1,
				OptimalTempMin: 90, OptimalTempMax: 110,
			},
		},
		Default: Compound{
			Name:           "default",
			TargetPressure: 27.5, Tolerance: 1,
			OptimalTempMin: 80, OptimalTempMax: 100,
		},
	}
}

// Lookup returns the first compound with a match term contained in name.
// Matching is case insensitive. Unknown names yield the default compound.
func (t *CompoundTable) Lookup(name string) Compound {
	lower := strings.ToLower(name)
	for i := range t.Compounds {
		for _, m := range t.Compounds[i].Match {
			if m != "" && strings.Contains(lower, strings.ToLower(m)) {
				return t.Compounds[i]
			}
		}
	}
	return t.Default
}

// LoadCompounds reads a YAML compound table.
// A missing default section keeps the built-in default compound.
func LoadCompounds(r io.Reader) (*CompoundTable, error) {
	ret := &CompoundTable{Default: DefaultCompounds().Default}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(ret); err != nil {
		return nil, fmt.Errorf("decode compounds: %w", err)
	}
	for i := range ret.Compounds {
		if err := ret.Compounds[i].validate(); err != nil {
			return nil, err
		}
	}
	if err := ret.Default.validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

func LoadCompoundsFile(path string) (*CompoundTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCompounds(f)
}

func (c *Compound) validate() error {
	switch {
	case c.TargetPressure <= 0:
		return fmt.Errorf("compound %q: target pressure must be positive", c.Name)
	case c.Tolerance <= 0:
		return fmt.Errorf("compound %q: tolerance must be positive", c.Name)
	case c.OptimalTempMax < c.OptimalTempMin:
		return fmt.Errorf("compound %q: invalid temperature window", c.Name)
	}
	return nil
}
