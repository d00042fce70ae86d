// Command validate checks every level file in a directory. It checks:
//   - the document decodes and passes level.Validate (codes, shape, one player)
//   - the board builds and starts
//   - at least one stairs tile exists
//   - the stairs are reachable from the player over floor-like tiles
//   - optionally, that the solver finds a winning sequence
package main

import (
	"context"
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

// ValidationResult captures the outcome of validating a single file.
// Errors holds the failures; Notes holds informational lines and warnings.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Notes  []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...interface{}) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// validateLevel loads a level file and runs the structural, reachability
// and (when solveDepth > 0) solver checks
func validateLevel(ctx context.Context, path string, solveDepth int) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
	}

	l, err := level.Load(path)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	eng, err := level.Start(l)
	if err != nil {
		result.fail("Failed to start level: %v", err)
		return result
	}

	stairs := eng.TilesNamed(engine.TileStairs)
	if len(stairs) == 0 {
		result.fail("Level has no stairs (E) tile")
	}
	if eng.Ended() {
		result.fail("Level ends before the first turn (%s)", eng.Outcome())
	}

	if result.Valid {
		if reach := reachableStairs(eng); reach == 0 {
			result.note("⚠ No stairs reachable over floor tiles; the level relies on pushes, bridges or items")
		} else {
			result.note("✓ Reachability: %d/%d stairs reachable from the player", reach, len(stairs))
		}
	}

	if result.Valid && solveDepth > 0 {
		res, err := solver.Solve(ctx, l, solveDepth)
		if err != nil {
			result.fail("Solver: %v", err)
		} else {
			result.note("✓ Solvable in %d turns (%d states explored)", len(res.Choices), res.Explored)
		}
	}

	if result.Valid {
		result.note("✓ Name: %s", l.Name)
		result.note("✓ Board: %dx%d", l.Width, l.Height())
		result.note("✓ Managers: %s", strings.Join(l.ManagerNames(), ", "))
		result.note("✓ Entities: %d", len(eng.Entities()))
		if n := len(eng.TilesNamed(engine.TileSwitch)); n > 0 {
			result.note("✓ Switches: %d", n)
		}
	}

	return result
}

// reachableStairs flood fills from the player over tiles that are neither
// obstacles nor holes, and counts the stairs it reaches. Entities are
// ignored.
func reachableStairs(eng *engine.Engine) int {
	start, ok := eng.IndexOf(eng.PlayerID())
	if !ok {
		return 0
	}

	grid := eng.Grid()
	passable := func(cell int) bool {
		tile := eng.TileAt(cell)
		return !tile.IsObstacle() && tile.Name() != engine.TileEmpty
	}

	visited := map[int]bool{start: true}
	queue := []int{start}
	found := 0

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if eng.TileAt(current).Name() == engine.TileStairs {
			found++
		}

		for _, next := range grid.Neighbors(current) {
			if !visited[next] && passable(next) {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	return found
}

// levelFiles lists the level files of dir in name order
func levelFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !level.IsLevelFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func printResult(result ValidationResult) {
	fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

	if result.Valid {
		fmt.Println("✅ VALID")
		for _, info := range result.Notes {
			fmt.Println("  " + info)
		}
		return
	}

	fmt.Println("❌ INVALID")
	for _, err := range result.Errors {
		fmt.Println("  ❌ " + err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	if cmd.Args().Present() {
		dir = cmd.Args().First()
	}

	files, err := levelFiles(dir)
	if err != nil {
		return fmt.Errorf("error finding level files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no level files in %s", dir)
	}

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	allValid := true
	for _, file := range files {
		result := validateLevel(ctx, file, cmd.Int("solve-depth"))
		printResult(result)
		allValid = allValid && result.Valid
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return cli.Exit("❌ Some levels have errors", 1)
	}
	fmt.Println("✅ All levels are valid!")
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "validate the level files of a directory",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "levels",
				Usage:   "directory holding the level files",
				Sources: cli.EnvVars("LEVELS_DIR"),
			},
			&cli.IntFlag{
				Name:  "solve-depth",
				Usage: "also require a solution within this many turns (0 skips the solver)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 2 * time.Minute,
				Usage: "overall time allowed for solving",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
