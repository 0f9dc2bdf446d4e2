package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/input-output-hk/s3upload"
	"github.com/input-output-hk/s3upload/config"
)

const devVersion = "dev"

var (
	appVersion = devVersion
	commitHash = "dev"
)

// newRootCmd builds the command. Confirmation lines go to stdout, logs and
// errors to stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		flagVersion bool
		flagVerbose bool
		flagNoColor bool
	)

	cmd := &cobra.Command{
		Use:   "s3upload",
		Short: "Upload a directory tree to an S3-compatible bucket",
		Long: "Uploads every file below DIR_PATH to S3_BUCKET at S3_ENDPOINT_URL, skipping .gitkeep files.\n" +
			"Settings are read from flags, the environment and an optional .env file, in that order.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flagVersion {
				printVersion(stdout)
				return nil
			}

			// Init logger.
			loggerOpt := &slog.HandlerOptions{}
			if flagVerbose {
				loggerOpt.Level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(stderr, loggerOpt))

			cfg, err := config.Load(config.LoadOptions{Flags: cmd.Flags()})
			if err != nil {
				return err
			}
			if cfg.EnvFile != "" {
				logger.Debug("loaded env file", "path", cfg.EnvFile)
			}

			_, err = s3upload.Upload(cmd.Context(), *cfg,
				s3upload.WithLogger(logger),
				s3upload.WithOutput(stdout),
				s3upload.WithColor(!flagNoColor && !color.NoColor && stdout == os.Stdout),
			)
			return err
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.SortFlags = false
	config.RegisterFlags(flags)
	flags.BoolVar(&flagNoColor, "no-color", false, "disable coloured output")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&flagVersion, "version", "V", false, "print version and exit")

	return cmd
}

func printVersion(w io.Writer) {
	version := appVersion
	if appVersion == devVersion {
		version += "." + commitHash
	}

	fmt.Fprintf(w, "version: %s\n", version)
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "s3upload: %v\n", err)
		return 1
	}

	return 0
}

func main() {
	// Initializing context with cancel for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
