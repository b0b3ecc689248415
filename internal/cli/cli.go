package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vk/pipegraph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// Execute parses args and runs the selected command.
func Execute(ctx context.Context, args []string, outW io.Writer) error {
	root := NewRootCmd(outW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCmd builds the pipegraph command tree writing to outW.
func NewRootCmd(outW io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PIPEGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "pipegraph",
		Short: "An interactive editor and runner for tabular data pipelines",
		Long: `pipegraph builds and runs pipelines of plugin nodes over tabular data.

Pipelines are stored as HCL files. Use 'serve' to edit them through the
HTTP editor, 'run' to execute one, and 'export' to draw its graph.

Every flag can also be set through a PIPEGRAPH_* environment variable,
for example PIPEGRAPH_LOG_LEVEL=debug.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	pf.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.String("progress-url", "", "socket.io endpoint that receives run progress. Empty disables it.")
	pf.String("progress-namespace", "/", "socket.io namespace for run progress.")
	pf.Duration("progress-timeout", 10*time.Second, "Timeout for connecting to the progress endpoint.")
	bindFlags(v, pf)

	root.AddCommand(
		newServeCmd(v, outW),
		newRunCmd(v, outW),
		newExportCmd(v, outW),
		newPluginsCmd(v, outW),
	)
	return root
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}

// exactArgs is cobra.ExactArgs with a usage exit code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// loadConfig validates the flags and environment into an app configuration.
func loadConfig(v *viper.Viper) (*app.Config, error) {
	slog.Debug("CLI parameter validation started.")
	cfg, err := app.NewConfig(app.Config{
		LogFormat:         strings.ToLower(v.GetString("log-format")),
		LogLevel:          strings.ToLower(v.GetString("log-level")),
		Addr:              v.GetString("addr"),
		Width:             v.GetFloat64("width"),
		Height:            v.GetFloat64("height"),
		StoreDir:          v.GetString("store-dir"),
		DatabaseURL:       v.GetString("database-url"),
		ProgressURL:       v.GetString("progress-url"),
		ProgressNamespace: v.GetString("progress-namespace"),
		ProgressTimeout:   v.GetDuration("progress-timeout"),
	})
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("CLI parameter validation complete.", "config", cfg)
	return cfg, nil
}

func newServeCmd(v *viper.Viper, outW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline editor over HTTP",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return app.NewApp(outW, cfg).Serve(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.String("addr", ":8080", "Address the editor listens on.")
	f.Float64("width", 1200, "Initial canvas width in pixels.")
	f.Float64("height", 800, "Initial canvas height in pixels.")
	f.String("store-dir", "configs", "Directory for saved configurations.")
	f.String("database-url", "", "PostgreSQL URL for saved configurations. Overrides --store-dir.")
	bindFlags(v, f)
	return cmd
}

func newRunCmd(v *viper.Viper, outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "run FILE",
		Short: "Run a pipeline file and print the output of its leaf nodes",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return app.NewApp(outW, cfg).RunFile(cmd.Context(), args[0])
		},
	}
}

func newExportCmd(v *viper.Viper, outW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the graph of a pipeline file as Graphviz DOT",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return app.NewApp(outW, cfg).ExportFile(cmd.Context(), args[0], v.GetString("output"))
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file. Defaults to standard output.")
	bindFlags(v, cmd.Flags())
	return cmd
}

func newPluginsCmd(v *viper.Viper, outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List the available plugins",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			app.NewApp(outW, cfg).ListPlugins(cmd.OutOrStdout())
			return nil
		},
	}
}
