// Package cli implements the cobra-based command line for gantry.
//
// gantry is a single-command CLI: the root command itself boots the
// server. This file defines the root command, its flag schema, and the
// Execute entry point that translates errors into process exit codes.
// The serve logic lives in run.go.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/gantry/internal/model"
)

// verbose enables debug logging. Bound to the --verbose persistent flag.
var verbose bool

// Version, Commit, and Date are set at build time via ldflags. They are
// injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command. Unlike a
// multi-command CLI, the root command does the work: it parses the
// application locator and flags, resolves the application, and runs the
// server until interrupt.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gantry [flags] APP_MODULE",
		Short: "Start an instance of the gantry HTTP application server",
		Long: `gantry boots a configured HTTP application server around an application
callable and drives it until interrupt.

APP_MODULE names the application as "module[:attr]": the module is looked
up among registered applications (or as a compiled plugin on the module
search path) and the attribute path within it yields the callable to
serve. Without ":attr", the attribute defaults to "application".

Examples:
  # Serve myapp/wsgi's "application" on 127.0.0.1:8000
  gantry myapp.wsgi

  # Serve "main_app" on 0.0.0.0:9000 with 8 worker threads
  gantry myapp.wsgi:main_app --bind 0.0.0.0:9000 --threads 8

  # Serve on a unix socket
  gantry myapp.wsgi --bind /run/myapp.sock`,

		// Exactly one positional argument: the application locator.
		// Violations are usage errors with the matching exit code.
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return model.WrapCLIError(model.ExitUsage, "expected exactly one APP_MODULE argument", err)
			}
			return nil
		},

		// SilenceUsage prevents cobra from printing usage on every error.
		// Usage is printed selectively in Execute, for usage errors only.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically;
		// Execute formats them.
		SilenceErrors: true,

		// Version is displayed when --version is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args[0])
		},
	}

	// The flag schema mirrors the server's option set. Numeric and string
	// server options carry no meaningful defaults here: only flags the
	// user explicitly set enter the assembled configuration, so the
	// default values below are never observed by the server.
	flags := rootCmd.Flags()
	flags.String("bind", "127.0.0.1:8000", "Network interface or socket path to listen on")
	flags.String("chdir", ".", "Working directory to switch to before the application is resolved")
	flags.String("server-name", "", "Web server name to be advertised via the Server response header")
	flags.Int("threads", 0, "Number of threads for the worker pool")
	flags.Int("max-threads", 0, "Maximum number of worker threads")
	flags.Int("timeout", 0, "Timeout in seconds for accepted connections")
	flags.Int("shutdown-timeout", 0, "Time in seconds to wait for workers to cleanly exit")
	flags.Int("request-queue-size", 0, "Maximum number of queued connections")
	flags.Int("accepted-queue-size", 0, "Maximum number of active requests in queue")
	flags.Int("accepted-queue-timeout", 0, "Timeout in seconds for putting requests into queue")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Flag-parse failures (unknown flag, bad integer) are usage errors.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return model.WrapCLIError(model.ExitUsage, "invalid usage", err)
	})

	return rootCmd
}

// Execute runs the root command and handles exit codes. This is the main
// entry point called from main.go.
//
// CLIError values carry their own exit codes; other errors exit 1. Usage
// errors additionally print the command synopsis, since the user asked
// for something the CLI cannot parse.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(err)
			if cliErr.Code == model.ExitUsage {
				fmt.Fprintln(os.Stderr)
				fmt.Fprint(os.Stderr, rootCmd.UsageString())
			}
			os.Exit(int(cliErr.Code))
		}

		printError(err)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError writes "Error: <message>" to stderr.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
