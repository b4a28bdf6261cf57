package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gameTestdata = "../config/testdata"

func TestValidateRequiresOneFile(t *testing.T) {
	_, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestValidateValidFile(t *testing.T) {
	path := filepath.Join(gameTestdata, "warmup.cue")

	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Equal(t, "✓ "+path+": width 3, tick 50ms, 4 tiles\n", out)
}

func TestValidateAppliesSchemaDefaults(t *testing.T) {
	path := filepath.Join(gameTestdata, "defaults.cue")

	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ValidationResult{
		File:   path,
		Valid:  true,
		Name:   "classic",
		Width:  9,
		TickMS: 100,
		Tiles:  27,
	}, resp.Data)
}

func TestValidateOutOfRangeValue(t *testing.T) {
	path := filepath.Join(gameTestdata, "bad_value.cue")

	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+path)
	assert.Contains(t, out, "layout")
}

func TestValidateJSONError(t *testing.T) {
	path := filepath.Join(gameTestdata, "bad_value.cue")

	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidGame, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, path, resp.Data.File)
	assert.NotEmpty(t, resp.Data.Error)
}

func TestValidateRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.cue")
	require.NoError(t, os.WriteFile(path, []byte("widht: 3\n"), 0o644))

	_, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidateSyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.cue")
	require.NoError(t, os.WriteFile(path, []byte("width: [\n"), 0o644))

	_, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidateMissingFile(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/game.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E_NOT_FOUND]")
}
