// Package cli implements the command-line surface: one subcommand per
// operation internal/httpapi also exposes over HTTP, both built directly
// on internal/orchestrator, internal/writer, internal/similarity and
// internal/indexmgr so the two surfaces can never drift in behavior.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cheminee/search-engine/internal/appwiring"
	"github.com/cheminee/search-engine/internal/config"
	"github.com/cheminee/search-engine/internal/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key CLIContext is stored under.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Output     string
	Timeout    time.Duration
}

// CLIContext carries the fully wired dependency set through the command
// tree. Subcommands pull it out of cmd.Context() via GetCLIContext rather
// than taking constructor arguments.
type CLIContext struct {
	Deps   *appwiring.Deps
	Output string
}

// NewRootCommand creates the root cobra command with global flags and the
// full domain command tree mounted under it.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "cheminee",
		Short:   "Chemical structure search engine",
		Long:    "cheminee indexes and searches chemical structures by identity, substructure,\nsuperstructure and similarity, over an inverted-index backend with a\nMilvus-backed candidate cluster encoder.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPostRun(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (when empty, no file is read: configuration comes from CHEMINEE_* env vars and defaults)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVarP(&opts.Output, "output", "o", "text", "output format: text|json")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "per-command operation timeout")

	cmd.AddCommand(
		newConvertCmd(),
		newSchemasCmd(),
		newIndexesCmd(),
		newSearchCmd(),
		newServeCmd(),
	)

	return cmd
}

// cancelByCmd tracks each invocation's context cancel func so
// persistentPostRun can release it once the subcommand returns. A process
// runs exactly one command per invocation, so keying by the root command
// pointer is sufficient.
var cancelByCmd = map[*cobra.Command]context.CancelFunc{}

// persistentPreRun loads configuration, builds the logger, and connects
// every backing store into a CLIContext stored on the command's context.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	var cfg *config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := logging.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if opts.LogLevel != "" {
		logCfg.Level = opts.LogLevel
	}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	deps, err := appwiring.Build(ctx, cfg, logger)
	if err != nil {
		cancel()
		return fmt.Errorf("wire dependencies: %w", err)
	}
	cancelByCmd[cmd.Root()] = cancel

	cliCtx := &CLIContext{Deps: deps, Output: opts.Output}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// persistentPostRun closes every connection persistentPreRun opened.
func persistentPostRun(cmd *cobra.Command) error {
	root := cmd.Root()
	defer func() {
		if cancel, ok := cancelByCmd[root]; ok {
			cancel()
			delete(cancelByCmd, root)
		}
	}()
	if cliCtx, ok := GetCLIContext(cmd); ok && cliCtx.Deps != nil {
		return cliCtx.Deps.Close()
	}
	return nil
}

// GetCLIContext retrieves the CLIContext persistentPreRun stored on cmd's
// context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, bool) {
	cliCtx, ok := cmd.Context().Value(cliContextKey{}).(*CLIContext)
	return cliCtx, ok
}

// Execute runs the root command, printing any error to stderr, and
// returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// PrintResult renders data as JSON or a plain Go value dump depending on
// the invocation's --output flag.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	output := "text"
	if cliCtx, ok := GetCLIContext(cmd); ok {
		output = cliCtx.Output
	}

	if strings.ToLower(output) == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}
