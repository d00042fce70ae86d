// Command schema writes the JSON schema of the level file format.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/voidgrid/game/level"
)

func writeSchema(outPath string) error {
	data, err := level.SchemaJSON()
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "schema",
		Usage: "write the JSON schema of level files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Value: "schema/level.schema.json",
				Usage: "path to write the JSON schema",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return writeSchema(cmd.String("out"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}
