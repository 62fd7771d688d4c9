package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cimillas/ticketpool/internal/config"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunCommand_CompletesAndPrintsSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")

	out, logs, err := execute(t, "run", "--config", path,
		"--capacity", "4", "--release-rate", "0", "--retrieval-rate", "0",
		"--vendors", "2", "--customers", "3", "--event-id", "gala")
	require.NoError(t, err)

	require.Contains(t, out, "completed")
	require.Contains(t, out, "gala")
	require.Contains(t, out, "Vendor 2")
	require.Contains(t, out, "Customer 3")
	require.Contains(t, logs, "ticket added")

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "run must not write the config file")
}

func TestRunCommand_TimeoutInterrupts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")

	out, _, err := execute(t, "run", "--config", path,
		"--capacity", "10", "--release-rate", "20", "--retrieval-rate", "0",
		"--vendors", "1", "--customers", "1", "--timeout", "50ms")
	require.Error(t, err)
	require.Contains(t, err.Error(), "interrupted")
	require.Contains(t, out, "interrupted")
}

func TestRunCommand_RejectsOutOfBoundsFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")

	tests := [][]string{
		{"--capacity", "0"},
		{"--capacity", "501"},
		{"--release-rate", "21"},
		{"--retrieval-rate", "-1"},
		{"--timeout", "soon"},
		{"--customers", "2", "--vendors", "0"},
	}
	for _, flags := range tests {
		args := append([]string{"run", "--config", path}, flags...)
		_, _, err := execute(t, args...)
		require.Error(t, err, "flags %v", flags)
	}
}

func TestConfigSetThenShowAndRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sim.yaml")

	out, _, err := execute(t, "config", "set", "--config", path,
		"--capacity", "120", "--release-rate", "3", "--price", "42.5",
		"--vendors", "2", "--customers", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Configuration saved")

	saved, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 120, saved.MaxCapacity)
	require.Equal(t, 3, saved.ReleaseRate)
	require.Equal(t, 1, saved.RetrievalRate)
	require.Equal(t, 42.5, saved.TicketPrice)
	require.Len(t, saved.Roster.Vendors, 2)
	require.Len(t, saved.Roster.Customers, 1)

	out, _, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "max_capacity: 120")
	require.Contains(t, out, "Vendor 1")

	out, _, err = execute(t, "roster", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "Vendors (2)")
	require.Contains(t, out, "Customers (1)")
	require.Contains(t, out, "42.50")
	require.Contains(t, out, saved.Roster.Customers[0].ID)
}

func TestConfigSet_KeepsOtherRosterSide(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")

	_, _, err := execute(t, "config", "set", "--config", path, "--vendors", "1", "--customers", "2")
	require.NoError(t, err)
	before, err := config.LoadConfig(path)
	require.NoError(t, err)

	_, _, err = execute(t, "config", "set", "--config", path, "--vendors", "3")
	require.NoError(t, err)
	after, err := config.LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, after.Roster.Vendors, 3)
	require.Equal(t, before.Roster.Customers, after.Roster.Customers)
}

func TestConfigSet_InvalidLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")

	_, _, err := execute(t, "config", "set", "--config", path, "--capacity", "10")
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, _, err = execute(t, "config", "set", "--config", path, "--capacity", "9999")
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	t.Parallel()

	out := renderTable([][]string{{"ID", "NAME"}, {"a-long-id", "x"}, {"b", "yy"}})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	col := strings.Index(lines[1], "x")
	require.Equal(t, col, strings.Index(lines[2], "yy"))
	require.Equal(t, col, strings.Index(lines[0], "NAME"))
}

func TestConfigSet_NoFlagsPrintsHelp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")

	out, _, err := execute(t, "config", "set", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "Usage:")

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}
