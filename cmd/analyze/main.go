// Command analyze prints quick, human-readable heuristics about level files:
// board size, how many of each tile and entity the board holds, whether the
// exit is gated by switches, and what the solver makes of it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/level"
	"github.com/wricardo/voidgrid/game/solver"
)

// Analysis summarizes one level
type Analysis struct {
	Name     string
	Width    int
	Height   int
	Tiles    map[string]int
	Entities map[string]int
	Switches int
	Stairs   int
	Managers []string

	// Solution is nil when the solver was skipped or failed; SolveErr says why
	Solution *solver.Result
	SolveErr error
}

// analyzeLevel loads a level and counts its contents. The solver runs
// when depth > 0.
func analyzeLevel(ctx context.Context, path string, depth int) (*Analysis, error) {
	l, err := level.Load(path)
	if err != nil {
		return nil, err
	}

	eng, err := level.Start(l)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Name:     l.Name,
		Width:    eng.Width(),
		Height:   eng.Height(),
		Tiles:    make(map[string]int),
		Entities: make(map[string]int),
		Managers: l.ManagerNames(),
	}

	snap := eng.Snapshot()
	for _, cell := range snap.Cells {
		a.Tiles[cell.Tile]++
		for _, ent := range cell.Entities {
			a.Entities[ent.Name]++
		}
	}
	a.Switches = a.Tiles[engine.TileSwitch]
	a.Stairs = a.Tiles[engine.TileStairs]

	if depth > 0 {
		a.Solution, a.SolveErr = solver.Solve(ctx, l, depth)
	}
	return a, nil
}

// counts renders a name->count map in name order
func counts(m map[string]int) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, m[name])
	}
	return strings.Join(parts, " ")
}

func printAnalysis(a *Analysis) {
	fmt.Printf("Name: %s\n", a.Name)
	fmt.Printf("Board: %d x %d\n", a.Width, a.Height)
	fmt.Printf("Tiles: %s\n", counts(a.Tiles))
	fmt.Printf("Entities: %s\n", counts(a.Entities))
	fmt.Printf("Managers: %s\n", strings.Join(a.Managers, ", "))

	switch {
	case a.Stairs == 0:
		fmt.Printf("⚠️  WARNING: no stairs, the level cannot be won\n")
	case a.Switches > 0:
		fmt.Printf("Exit gated by %d switch(es)\n", a.Switches)
	default:
		fmt.Printf("Exit open from the start\n")
	}

	switch {
	case a.Solution != nil:
		fmt.Printf("✅ Solvable in %d turns: %s\n", len(a.Solution.Choices), formatChoices(a.Solution.Choices))
		fmt.Printf("   %d states explored\n", a.Solution.Explored)
	case errors.Is(a.SolveErr, solver.ErrNoSolution):
		fmt.Printf("⚠️  CRITICAL: %v\n", a.SolveErr)
	case a.SolveErr != nil:
		fmt.Printf("⚠️  Solver stopped: %v\n", a.SolveErr)
	}
}

func formatChoices(choices []engine.Choice) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

func run(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		dir := cmd.String("dir")
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if !entry.IsDir() && level.IsLevelFile(entry.Name()) {
				paths = append(paths, filepath.Join(dir, entry.Name()))
			}
		}
	}

	for _, path := range paths {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(path))

		solveCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
		a, err := analyzeLevel(solveCtx, path, cmd.Int("depth"))
		cancel()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printAnalysis(a)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "print heuristics about level files",
		ArgsUsage: "[level files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "levels",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("LEVELS_DIR"),
			},
			&cli.IntFlag{
				Name:  "depth",
				Value: 40,
				Usage: "solver depth in turns (0 skips the solver)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "time allowed for solving each level",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
