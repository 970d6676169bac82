// replay/scenario.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package replay

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	av "github.com/mmp/pathtrack/aviation"
	"github.com/mmp/pathtrack/math"
	"github.com/mmp/pathtrack/nav"
	"github.com/mmp/pathtrack/util"
)

// Scenario is a replay definition: one or more named paths and the
// aircraft that fly them. All coordinates are planar meters.
type Scenario struct {
	Name     string              `json:"name"`
	Paths    map[string]PathSpec `json:"paths"`
	Aircraft []AircraftSpec      `json:"aircraft"`

	// Built from Paths by PostDeserialize.
	horizontalPaths map[string]av.HorizontalPath
}

type PathSpec struct {
	Points []PointSpec `json:"points"`
}

type PointSpec struct {
	Position [2]float64 `json:"position"`
	// If set, the segment from this point to the next is an arc.
	Arc *ArcSpec `json:"arc,omitempty"`
}

type ArcSpec struct {
	Center    [2]float64 `json:"center"`
	Clockwise bool       `json:"clockwise"`
	BankAngle float64    `json:"bank_angle"` // degrees
	Type      string     `json:"type"`       // "point-to-point" (default) or "radius-fixed"
}

// AircraftSpec describes one aircraft's track. Exactly one of Positions
// and Distances must be given: positions are resolved to along-path
// distances and distances to positions.
type AircraftSpec struct {
	Callsign  string       `json:"callsign"`
	Path      string       `json:"path"`
	Direction string       `json:"direction"` // "decrementing", "incrementing" or "undefined"; required
	Tolerance string       `json:"tolerance"` // "tight", "standard", "capture" or a distance in nm
	Positions [][2]float64 `json:"positions,omitempty"`
	Distances []float64    `json:"distances,omitempty"`
}

// LoadScenario reads and validates the scenario in the given file. Errors
// are accumulated in e; the returned scenario is only usable if e has no
// errors.
func LoadScenario(filename string, e *util.ErrorLogger) *Scenario {
	contents, err := os.ReadFile(filename)
	if err != nil {
		e.Error(err)
		return nil
	}

	e.Push(filename)
	defer e.Pop()
	return ParseScenario(contents, e)
}

// ParseScenario parses and validates a JSON scenario definition.
func ParseScenario(contents []byte, e *util.ErrorLogger) *Scenario {
	for _, dupe := range util.FindDuplicateJSONKeys(contents) {
		e.ErrorString("duplicate key %q", dupe.String())
	}

	util.CheckJSON[Scenario](contents, e)
	if e.HaveErrors() {
		return nil
	}

	var s Scenario
	if err := util.UnmarshalJSONBytes(contents, &s); err != nil {
		e.Error(err)
		return nil
	}

	s.PostDeserialize(e)
	return &s
}

// PostDeserialize builds the scenario's paths and checks the aircraft
// definitions against them.
func (s *Scenario) PostDeserialize(e *util.ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())

	s.horizontalPaths = make(map[string]av.HorizontalPath)

	e.Push("paths")
	if len(s.Paths) == 0 {
		e.ErrorString("no paths defined")
	}
	for _, name := range util.SortedMapKeys(s.Paths) {
		e.Push(name)
		if path, err := s.Paths[name].build(); err != nil {
			e.Error(err)
		} else {
			s.horizontalPaths[name] = path
		}
		e.Pop()
	}
	e.Pop()

	e.Push("aircraft")
	if len(s.Aircraft) == 0 {
		e.ErrorString("no aircraft defined")
	}
	seen := make(map[string]bool)
	for i, ac := range s.Aircraft {
		e.Push(strconv.Itoa(i))
		if ac.Callsign == "" {
			e.ErrorString("\"callsign\" not specified")
		} else if seen[ac.Callsign] {
			e.ErrorString("%s: callsign repeated", ac.Callsign)
		}
		seen[ac.Callsign] = true

		if _, ok := s.Paths[ac.Path]; !ok {
			e.ErrorString("path %q not found; options: %s", ac.Path,
				strings.Join(util.SortedMapKeys(s.Paths), ", "))
		}
		if ac.Direction == "" {
			e.ErrorString("\"direction\" not specified")
		} else if _, err := ParseDirection(ac.Direction); err != nil {
			e.Error(err)
		}
		if ac.Tolerance != "" {
			if _, err := ParseTolerance(ac.Tolerance); err != nil {
				e.Error(err)
			}
		}
		if (len(ac.Positions) == 0) == (len(ac.Distances) == 0) {
			e.ErrorString("exactly one of \"positions\" and \"distances\" must be given")
		}
		e.Pop()
	}
	e.Pop()
}

// HorizontalPath returns the built path with the given name.
func (s *Scenario) HorizontalPath(name string) (av.HorizontalPath, bool) {
	p, ok := s.horizontalPaths[name]
	return p, ok
}

func (ps PathSpec) build() (av.HorizontalPath, error) {
	var pts []av.RoutePoint
	for i, pt := range ps.Points {
		rp := av.RoutePoint{Position: pt.Position}
		if pt.Arc != nil {
			tt, err := parseTurnType(pt.Arc.Type)
			if err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
			rp.Arc = &av.RouteArc{
				Center:    pt.Arc.Center,
				Clockwise: pt.Arc.Clockwise,
				BankAngle: math.Radians(pt.Arc.BankAngle),
				Type:      tt,
			}
		}
		pts = append(pts, rp)
	}
	return av.PathFromRoutePoints(pts)
}

func parseTurnType(s string) (av.TurnType, error) {
	switch strings.ToLower(s) {
	case "", "point-to-point":
		return av.PointToPointTurn, nil
	case "radius-fixed":
		return av.RadiusFixedTurn, nil
	default:
		return 0, fmt.Errorf("%q: unknown turn type; options: point-to-point, radius-fixed", s)
	}
}

// ParseDirection parses an index progression direction. There is no
// default; aircraft flying a path toward its first node use
// "decrementing".
func ParseDirection(s string) (nav.IndexProgressionDirection, error) {
	dirs := []nav.IndexProgressionDirection{nav.DecrementingProgression, nav.IncrementingProgression,
		nav.UndefinedProgression}
	if idx := slices.IndexFunc(dirs, func(d nav.IndexProgressionDirection) bool {
		return d.String() == strings.ToLower(s)
	}); idx != -1 {
		return dirs[idx], nil
	}
	return 0, fmt.Errorf("%q: unknown progression direction; options: decrementing, incrementing, undefined", s)
}

// ParseTolerance parses a cross-track tolerance given either by name or
// as a distance in nautical miles. The result is in meters.
func ParseTolerance(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "tight":
		return nav.TightCrossTrackTolerance, nil
	case "standard":
		return nav.StandardCrossTrackTolerance, nil
	case "capture":
		return nav.CaptureCrossTrackTolerance, nil
	}

	nm, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(s), "nm"), 64)
	if err != nil || !(nm > 0) {
		return 0, fmt.Errorf("%q: invalid cross-track tolerance; options: tight, standard, capture, or a distance in nm", s)
	}
	return nm * av.MetersPerNM, nil
}
