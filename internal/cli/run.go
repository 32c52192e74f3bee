// Package cli — run.go implements the serve flow behind the root command:
// parse, environment setup, application resolution, configuration
// assembly, preflight, and the server lifecycle.
package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mmr-tortoise/gantry/internal/conf"
	"github.com/mmr-tortoise/gantry/internal/httpserver"
	"github.com/mmr-tortoise/gantry/internal/lifecycle"
	"github.com/mmr-tortoise/gantry/internal/locator"
	"github.com/mmr-tortoise/gantry/internal/model"
	"github.com/mmr-tortoise/gantry/internal/port"
	"github.com/mmr-tortoise/gantry/internal/workdir"
)

// runServe is the main logic of the root command. It turns the parsed
// invocation into a running server and blocks until shutdown.
func runServe(cmd *cobra.Command, appArg string) error {
	log := newLogger(verbose)
	defer func() { _ = log.Sync() }()

	// Parse-time validation: both failures here are usage errors with no
	// side effects performed yet.
	ref, err := model.ParseAppRef(appArg)
	if err != nil {
		return model.WrapCLIError(model.ExitUsage, "invalid application locator", err)
	}

	bindArg, _ := cmd.Flags().GetString("bind")
	bind, err := model.ParseBindTarget(bindArg)
	if err != nil {
		return model.WrapCLIError(model.ExitUsage, "invalid bind address", err)
	}

	flags := collectFlags(cmd, bindArg)
	if err := conf.Validate(flags); err != nil {
		return model.WrapCLIError(model.ExitUsage, "invalid option", err)
	}

	// Environment setup precedes resolution so modules are found relative
	// to the requested working directory.
	chdir, _ := flags[conf.KeyChdir].(string)
	dir, searchPath, err := workdir.Setup(chdir, workdir.SearchPathFromEnv())
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to set up working directory", err)
	}
	log.Debugw("environment ready", "workdir", dir, "search_path", searchPath)

	app, err := locator.NewResolver(locator.Default, searchPath).Resolve(ref)
	if err != nil {
		var locErr *locator.Error
		if errors.As(err, &locErr) {
			return model.WrapCLIError(model.ExitLocatorFailed, "failed to resolve application", err)
		}
		return model.WrapCLIError(model.ExitImportFailed, "failed to load application module", err)
	}
	log.Debugw("application resolved", "module", ref.Module, "attr", ref.Attr)

	config := conf.Assemble(flags, app, bind)

	if err := port.NewProbe().Check(bind); err != nil {
		return model.WrapCLIError(model.ExitBindUnavailable, "bind target unavailable", err)
	}

	// The interrupt signals are converted to context cancellation here;
	// the controller treats cancellation as a clean shutdown request.
	ctx, stopNotify := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopNotify()

	controller := lifecycle.NewController(httpserver.Factory(log), config, log)
	if err := controller.Run(ctx); err != nil {
		return model.WrapCLIError(model.ExitServerFailed, "server failed", err)
	}
	return nil
}

// collectFlags builds the sparse flag record: optional server options
// enter only when the user explicitly set them, detected via
// Flags().Changed. The raw bind string and the CLI-internal chdir are
// always present; Assemble replaces the former and strips the latter.
func collectFlags(cmd *cobra.Command, bindArg string) conf.Flags {
	flags := cmd.Flags()
	record := conf.Flags{
		conf.KeyBind: bindArg,
	}

	chdir, _ := flags.GetString("chdir")
	record[conf.KeyChdir] = chdir

	if flags.Changed("server-name") {
		v, _ := flags.GetString("server-name")
		record[conf.KeyServerName] = v
	}

	intFlags := map[string]string{
		"threads":                conf.KeyThreads,
		"max-threads":            conf.KeyMaxThreads,
		"timeout":                conf.KeyTimeout,
		"shutdown-timeout":       conf.KeyShutdownTimeout,
		"request-queue-size":     conf.KeyRequestQueueSize,
		"accepted-queue-size":    conf.KeyAcceptedQueueSize,
		"accepted-queue-timeout": conf.KeyAcceptedQueueTimeout,
	}
	for flagName, key := range intFlags {
		if flags.Changed(flagName) {
			v, _ := flags.GetInt(flagName)
			record[key] = v
		}
	}

	return record
}

// newLogger builds the console logger for the invocation. Verbose mode
// lowers the level to Debug. Logs go to stderr; stdout stays free for the
// application.
func newLogger(verbose bool) *zap.SugaredLogger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)
	return zap.New(core).Sugar()
}
