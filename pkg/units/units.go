// Package units resolves dimension tags to SI scale factors.
package units

import (
	"fmt"
	"strings"
)

// System resolves a dimension expression to the factor that converts deck values to SI.
type System interface {
	Name() string
	Factor(dimension string) (float64, error)
}

// Table is a System backed by a map of base dimensions. Expressions combine base dimensions
// with '*' and '/', evaluated left to right; "1" is dimensionless.
type Table struct {
	name    string
	factors map[string]float64
}

func NewTable(name string, factors map[string]float64) *Table {
	m := make(map[string]float64, len(factors)+1)
	for k, v := range factors {
		m[k] = v
	}
	m["1"] = 1
	return &Table{name: name, factors: m}
}

func (t *Table) Name() string { return t.name }

func (t *Table) Factor(dimension string) (float64, error) {
	expr := strings.TrimSpace(dimension)
	if expr == "" {
		return 0, fmt.Errorf("%s: empty dimension", t.name)
	}
	out := 1.0
	op := byte('*')
	start := 0
	for i := 0; i <= len(expr); i++ {
		if i < len(expr) && expr[i] != '*' && expr[i] != '/' {
			continue
		}
		base := strings.TrimSpace(expr[start:i])
		f, ok := t.factors[base]
		if !ok {
			return 0, fmt.Errorf("%s: unknown dimension %q in %q", t.name, base, dimension)
		}
		if op == '*' {
			out *= f
		} else {
			out /= f
		}
		if i < len(expr) {
			op = expr[i]
		}
		start = i + 1
	}
	return out, nil
}

const (
	day        = 86400.0
	barPa      = 1e5
	psiPa      = 6894.757293168
	footM      = 0.3048
	stbM3      = 0.158987294928
	mscfM3     = 28.316846592
	lbKg       = 0.45359237
	milliDarcy = 9.869233e-16
	centiPoise = 1e-3
)

// Metric returns the METRIC deck unit system.
func Metric() *Table {
	return NewTable("METRIC", map[string]float64{
		"Length":              1,
		"Time":                day,
		"Mass":                1,
		"Pressure":            barPa,
		"Permeability":        milliDarcy,
		"Viscosity":           centiPoise,
		"Density":             1,
		"LiquidSurfaceVolume": 1,
		"GasSurfaceVolume":    1,
		"ReservoirVolume":     1,
		"Transmissibility":    centiPoise / barPa / day,
		"AbsoluteTemperature": 1,
		"Temperature":         1,
	})
}

// Field returns the FIELD deck unit system.
func Field() *Table {
	return NewTable("FIELD", map[string]float64{
		"Length":              footM,
		"Time":                day,
		"Mass":                lbKg,
		"Pressure":            psiPa,
		"Permeability":        milliDarcy,
		"Viscosity":           centiPoise,
		"Density":             lbKg / (footM * footM * footM),
		"LiquidSurfaceVolume": stbM3,
		"GasSurfaceVolume":    mscfM3,
		"ReservoirVolume":     stbM3,
		"Transmissibility":    centiPoise * stbM3 / day / psiPa,
		"AbsoluteTemperature": 5.0 / 9.0,
		"Temperature":         5.0 / 9.0,
	})
}

// ByName returns the unit system a deck selects with the keyword name, ignoring case.
func ByName(name string) (*Table, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "METRIC":
		return Metric(), nil
	case "FIELD":
		return Field(), nil
	}
	return nil, fmt.Errorf("unknown unit system %q", name)
}
