package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tenpair/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	File   string `json:"file"`
	Valid  bool   `json:"valid"`
	Name   string `json:"name,omitempty"`
	Width  int    `json:"width,omitempty"`
	TickMS int    `json:"tick_ms,omitempty"`
	Tiles  int    `json:"tiles,omitempty"`
	Error  string `json:"error,omitempty"`
	Line   int    `json:"line,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <game.cue>",
		Short: "Validate a game file",
		Long: `Validate a CUE game file against the game schema: width 1..16, a
positive tick_ms and layout values 1..9. Unknown fields are rejected.

Exit codes:
  0 - The file is valid
  1 - The file violates the schema
  2 - The file cannot be read`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	src, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("cannot read %s", path), err.Error())
		return WrapExitError(ExitCommandError, "failed to read game file", err)
	}
	formatter.VerboseLog("Validating %s (%d bytes)", path, len(src))

	g, err := config.CompileGame(path, src)
	if err != nil {
		result := ValidationResult{File: path, Error: err.Error()}
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Pos.IsValid() {
			result.Line = cfgErr.Pos.Line()
		}
		if formatter.JSON() {
			_ = formatter.Result(result, &CLIError{Code: ErrCodeInvalidGame, Message: err.Error()})
		} else {
			formatter.Printf("✗ %s\n  %v\n", path, err)
		}
		return WrapExitError(ExitFailure, "invalid game file", err)
	}

	result := ValidationResult{
		File:   path,
		Valid:  true,
		Name:   g.Name,
		Width:  g.Width,
		TickMS: g.TickMS,
		Tiles:  len(g.Tiles()),
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	formatter.Printf("✓ %s: width %d, tick %s, %d tiles\n", path, g.Width, g.Tick(), result.Tiles)
	return nil
}
