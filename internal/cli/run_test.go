// Package cli — run_test.go covers the flag record assembly and the
// error-to-exit-code mapping of the serve flow. Tests register
// applications in the locator registry instead of building plugins.
package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/gantry/internal/conf"
	"github.com/mmr-tortoise/gantry/internal/locator"
	"github.com/mmr-tortoise/gantry/internal/model"
)

// chdir changes the working directory for the duration of a test, like
// t.Chdir on newer Go versions.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// parseRoot builds a root command and parses the given command line.
func parseRoot(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := NewRootCommand()
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

// exitCodeOf extracts the CLIError exit code from an Execute error.
func exitCodeOf(t *testing.T, err error) model.ExitCode {
	t.Helper()
	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	return cliErr.Code
}

// TestCollectFlags_Sparse verifies that only explicitly supplied options
// enter the record, while the raw bind string and the internal chdir are
// always present.
func TestCollectFlags_Sparse(t *testing.T) {
	cmd := parseRoot(t, "--threads", "8", "--timeout", "30")

	record := collectFlags(cmd, "127.0.0.1:8000")

	assert.Equal(t, conf.Flags{
		conf.KeyBind:    "127.0.0.1:8000",
		conf.KeyChdir:   ".",
		conf.KeyThreads: 8,
		conf.KeyTimeout: 30,
	}, record)
}

// TestCollectFlags_NothingSupplied verifies the record for a bare
// invocation: no server option is present, not even as a default.
func TestCollectFlags_NothingSupplied(t *testing.T) {
	cmd := parseRoot(t)

	record := collectFlags(cmd, "127.0.0.1:8000")

	assert.Equal(t, conf.Flags{
		conf.KeyBind:  "127.0.0.1:8000",
		conf.KeyChdir: ".",
	}, record)
}

// TestCollectFlags_AllSupplied verifies every flag maps to its option key.
func TestCollectFlags_AllSupplied(t *testing.T) {
	cmd := parseRoot(t,
		"--chdir", "/srv/app",
		"--server-name", "gantry",
		"--threads", "8",
		"--max-threads", "32",
		"--timeout", "30",
		"--shutdown-timeout", "5",
		"--request-queue-size", "128",
		"--accepted-queue-size", "64",
		"--accepted-queue-timeout", "10",
	)

	record := collectFlags(cmd, "0.0.0.0:9000")

	assert.Equal(t, conf.Flags{
		conf.KeyBind:                 "0.0.0.0:9000",
		conf.KeyChdir:                "/srv/app",
		conf.KeyServerName:           "gantry",
		conf.KeyThreads:              8,
		conf.KeyMaxThreads:           32,
		conf.KeyTimeout:              30,
		conf.KeyShutdownTimeout:      5,
		conf.KeyRequestQueueSize:     128,
		conf.KeyAcceptedQueueSize:    64,
		conf.KeyAcceptedQueueTimeout: 10,
	}, record)
}

// TestRootCommand_ArgsValidation verifies that a missing or duplicated
// positional argument is a usage error.
func TestRootCommand_ArgsValidation(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"app.one", "app.two"},
	} {
		cmd := NewRootCommand()
		cmd.SetArgs(args)

		err := cmd.Execute()
		require.Error(t, err)
		assert.Equal(t, model.ExitUsage, exitCodeOf(t, err))
	}
}

// TestRootCommand_UnknownFlag verifies flag-parse failures map to the
// usage exit code.
func TestRootCommand_UnknownFlag(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"myapp.wsgi", "--no-such-flag"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, model.ExitUsage, exitCodeOf(t, err))
}

// TestRunServe_ExitCodes walks the fatal paths of the serve flow and
// checks each maps to its dedicated exit code.
func TestRunServe_ExitCodes(t *testing.T) {
	chdir(t, t.TempDir())

	locator.Register("clitest.codes", locator.Namespace{
		"application": http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		"number":      42,
	})

	tests := []struct {
		name string
		args []string
		want model.ExitCode
	}{
		{
			name: "module not found",
			args: []string{"no.such.module"},
			want: model.ExitImportFailed,
		},
		{
			name: "locator not found",
			args: []string{"clitest.codes:missing"},
			want: model.ExitLocatorFailed,
		},
		{
			name: "locator not callable",
			args: []string{"clitest.codes:number"},
			want: model.ExitLocatorFailed,
		},
		{
			name: "bind port out of range",
			args: []string{"clitest.codes", "--bind", "host:70000"},
			want: model.ExitUsage,
		},
		{
			name: "invalid option value",
			args: []string{"clitest.codes", "--threads", "0"},
			want: model.ExitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCommand()
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Equal(t, tt.want, exitCodeOf(t, err))
		})
	}
}

// TestRunServe_InterruptedRunExitsClean verifies the happy path end to
// end with an already-delivered interrupt: the server is constructed,
// started, and torn down, and the invocation reports no error.
func TestRunServe_InterruptedRunExitsClean(t *testing.T) {
	chdir(t, t.TempDir())

	locator.Register("clitest.clean", locator.Namespace{
		"application": http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	})

	// A pre-cancelled parent context stands in for the interrupt signal.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"clitest.clean", "--bind", "127.0.0.1:0"})

	err := cmd.ExecuteContext(ctx)
	assert.NoError(t, err)
}

// TestRunServe_LocatorErrorDetail verifies that the locator failure keeps
// its reason available for diagnostics after CLI wrapping.
func TestRunServe_LocatorErrorDetail(t *testing.T) {
	chdir(t, t.TempDir())

	locator.Register("clitest.detail", locator.Namespace{"number": 42})

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"clitest.detail:number"})

	err := cmd.Execute()
	require.Error(t, err)

	var locErr *locator.Error
	require.True(t, errors.As(err, &locErr))
	assert.Equal(t, locator.NotCallable, locErr.Reason)
}
