// replay/replay.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/mmp/pathtrack/log"
	"github.com/mmp/pathtrack/math"
	"github.com/mmp/pathtrack/nav"
	"github.com/mmp/pathtrack/util"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
)

// Step is the result of resolving one point of an aircraft's track.
type Step struct {
	Position           [2]float64
	Distance           float64
	Course             float64 // degrees
	PointToPointCourse float64 // degrees
	CrossTrack         float64
	PathIndex          int
	PassedEndOfRoute   bool
	// OffPath is set if the position was not within the cross-track
	// tolerance of the path; only Position is valid in that case.
	OffPath bool
}

type Track struct {
	Callsign string
	Path     string
	Steps    []Step
}

type Result struct {
	Scenario string
	Tracks   []Track
}

type Options struct {
	// Tolerance is the cross-track tolerance (meters) used for aircraft
	// that don't specify their own.
	Tolerance float64
	// Workers bounds the number of aircraft replayed concurrently; if
	// zero, runtime.NumCPU() is used.
	Workers int
	Logger  *log.Logger
}

// Run replays all of the scenario's aircraft, each with its own tracker.
// Aircraft are independent and are replayed concurrently. An index
// progression error for any aircraft stops the replay and is returned.
func Run(ctx context.Context, s *Scenario, opts Options) (*Result, error) {
	if opts.Tolerance == 0 {
		opts.Tolerance = nav.StandardCrossTrackTolerance
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	result := &Result{
		Scenario: s.Name,
		Tracks:   make([]Track, len(s.Aircraft)),
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, ac := range s.Aircraft {
		eg.Go(func() error {
			track, err := runAircraft(ctx, s, ac, opts)
			result.Tracks[i] = track
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func runAircraft(ctx context.Context, s *Scenario, ac AircraftSpec, opts Options) (Track, error) {
	track := Track{Callsign: ac.Callsign, Path: ac.Path}
	lg := opts.Logger.With(slog.String("callsign", ac.Callsign))

	path, ok := s.HorizontalPath(ac.Path)
	if !ok {
		return track, fmt.Errorf("%s: path %q not found", ac.Callsign, ac.Path)
	}
	dir, err := ParseDirection(ac.Direction)
	if err != nil {
		return track, fmt.Errorf("%s: %w", ac.Callsign, err)
	}

	if len(ac.Positions) > 0 {
		tolerance := opts.Tolerance
		if ac.Tolerance != "" {
			if tolerance, err = ParseTolerance(ac.Tolerance); err != nil {
				return track, fmt.Errorf("%s: %w", ac.Callsign, err)
			}
		}

		dc, err := nav.NewDistanceCalculator(path, dir, tolerance, lg)
		if err != nil {
			return track, fmt.Errorf("%s: %w", ac.Callsign, err)
		}
		dc.SetCallsign(ac.Callsign)

		for i, p := range ac.Positions {
			if err := ctx.Err(); err != nil {
				return track, err
			}

			pr, err := dc.Project(p[0], p[1])
			if errors.Is(err, nav.ErrOffPath) {
				lg.Warn("position off path", slog.Int("step", i), slog.Any("position", p))
				track.Steps = append(track.Steps, Step{Position: p, OffPath: true})
				continue
			} else if err != nil {
				return track, fmt.Errorf("%s: step %d: %w", ac.Callsign, i, err)
			}

			track.Steps = append(track.Steps, Step{
				Position:           p,
				Distance:           pr.Distance,
				Course:             math.Degrees(pr.Course),
				PointToPointCourse: math.Degrees(pr.PointToPointCourse),
				CrossTrack:         pr.CrossTrack,
				PathIndex:          pr.Index,
				PassedEndOfRoute:   dc.IsPassedEndOfRoute(),
			})
		}
	} else {
		pc, err := nav.NewPositionCalculator(path, dir, lg)
		if err != nil {
			return track, fmt.Errorf("%s: %w", ac.Callsign, err)
		}
		pc.SetCallsign(ac.Callsign)

		for i, d := range ac.Distances {
			if err := ctx.Err(); err != nil {
				return track, err
			}

			pos, course, p2p, err := pc.CalculateWithPointToPoint(d)
			if err != nil {
				return track, fmt.Errorf("%s: step %d: %w", ac.Callsign, i, err)
			}

			track.Steps = append(track.Steps, Step{
				Position:           pos,
				Distance:           d,
				Course:             math.Degrees(course),
				PointToPointCourse: math.Degrees(p2p),
				PathIndex:          pc.CurrentIndex(),
				PassedEndOfRoute:   pc.IsPassedEndOfRoute(),
			})
		}
	}

	lg.Debug("replayed track", slog.String("path", ac.Path), slog.Int("steps", len(track.Steps)))
	return track, nil
}

// Save writes the result to w as zstd-compressed msgpack.
func (r *Result) Save(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(r); err != nil {
		return fmt.Errorf("failed to encode replay result: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// LoadResult reads a result written by Result.Save.
func LoadResult(r io.Reader) (*Result, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var result Result
	if err := msgpack.NewDecoder(zr).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode replay result: %w", err)
	}
	return &result, nil
}

// Print writes a human-readable summary of the result to w.
func (r *Result) Print(w io.Writer) {
	callsigns := util.MapSlice(r.Tracks, func(tr Track) string { return tr.Callsign })
	fmt.Fprintf(w, "Scenario %s: %d aircraft (%s)\n", r.Scenario, len(r.Tracks), strings.Join(callsigns, ", "))
	for _, tr := range r.Tracks {
		fmt.Fprintf(w, "%s (%s)\n", tr.Callsign, tr.Path)
		for i, st := range tr.Steps {
			if st.OffPath {
				fmt.Fprintf(w, "  %3d (%10.1f, %10.1f) off path\n", i, st.Position[0], st.Position[1])
				continue
			}
			fmt.Fprintf(w, "  %3d (%10.1f, %10.1f) dist %10.1f course %05.1f p2p %05.1f xtk %7.1f idx %d",
				i, st.Position[0], st.Position[1], st.Distance, st.Course, st.PointToPointCourse,
				st.CrossTrack, st.PathIndex)
			if st.PassedEndOfRoute {
				fmt.Fprintf(w, " passed")
			}
			fmt.Fprintln(w)
		}
	}
}
