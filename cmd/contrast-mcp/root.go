package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/contrast-mcp/internal/server"
)

// logLevelEnv overrides the default log level when --log-level is not given.
const logLevelEnv = "CONTRAST_MCP_LOG_LEVEL"

type rootOptions struct {
	logLevel string
	origin   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "contrast-mcp",
		Short: "Readable text colours over background images",
		Long: `contrast-mcp maps each target element onto the region of the background
image behind it, averages that region and resolves a contrasting colour:
either the inverse colour, or the light or dark colour of a theme.

Without a subcommand it runs as an MCP server over stdin/stdout.`,
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"log level (trace, debug, info, warn, error); default from "+logLevelEnv+" or warn")
	cmd.PersistentFlags().StringVar(&opts.origin, "origin", "",
		"origin of the page the images are shown on, for cross-origin checks")

	cmd.SetVersionTemplate(versionString() + "\n")

	cmd.AddCommand(
		newServeCmd(opts),
		newComputeCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// newLogger writes to stderr; stdout is reserved for the MCP protocol and
// command output.
func newLogger(level string, w io.Writer) (hclog.Logger, error) {
	if level == "" {
		level = os.Getenv(logLevelEnv)
	}
	if level == "" {
		level = "warn"
	}
	l := hclog.LevelFromString(strings.ToLower(level))
	if l == hclog.NoLevel {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "contrast-mcp",
		Output: w,
		Level:  l,
	}), nil
}

func versionString() string {
	return fmt.Sprintf("contrast-mcp %s\n  Build time: %s\n  Git commit: %s", Version, BuildTime, GitCommit)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run the MCP server on stdin/stdout. Configure it in your MCP client; the
server exposes image_load, image_dimensions, contrast_compute,
contrast_preview, contrast_resolve, contrast_map_region and color_hex.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	logger, err := newLogger(opts.logLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger.Debug("starting MCP server", "version", Version, "built", BuildTime, "commit", GitCommit)

	server.Version = Version
	srv := server.New(server.WithLogger(logger), server.WithOrigin(opts.origin))
	if err := srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
