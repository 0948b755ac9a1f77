// Command twofactor is the operator tool for the two-factor module: it creates
// encryption keys and secrets, computes and checks codes, renders provisioning
// URIs and prepares the record stores.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/logger"
)

var version = "dev"

// errInvalidCode makes `verify` exit with a non-zero status.
var errInvalidCode = errors.New("code is invalid")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "twofactor",
		Short:         "Two-factor authentication toolbox",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log at debug level")

	// newLogger follows LOG_LEVEL, LOG_FORMAT and APP_ENV; --verbose forces debug.
	newLogger := func(cmd *cobra.Command) *slog.Logger {
		var cfg logger.Config
		if err := config.Load(&cfg); err != nil {
			cfg = logger.Config{Environment: logger.EnvDevelopment, Service: "twofactor"}
		}
		opts := []logger.Option{
			logger.WithOutput(cmd.ErrOrStderr()),
			logger.WithAttr(logger.Component("twofactor.cli")),
		}
		if verbose {
			opts = append(opts, logger.WithLevel(slog.LevelDebug))
		}
		return logger.FromConfig(cfg, opts...)
	}

	root.AddCommand(
		keygenCommand(),
		secretCommand(),
		recoveryCommand(),
		codeCommand(),
		verifyCommand(),
		uriCommand(),
		migrateCommand(newLogger),
		indexesCommand(newLogger),
	)
	return root
}
