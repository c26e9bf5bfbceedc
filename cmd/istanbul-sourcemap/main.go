// Command istanbul-sourcemap remaps Istanbul coverage collected on generated
// JavaScript onto the original sources named by the embedded source maps.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	istanbul "github.com/canyon-project/istanbul-sourcemap"
	"github.com/canyon-project/istanbul-sourcemap/internal/config"
	"github.com/canyon-project/istanbul-sourcemap/internal/errorList"
)

const defaultCacheSize = 256

// app holds state shared by all subcommands of one invocation.
type app struct {
	log      *log.Logger
	flags    config.Flags
	logLevel string
	envFiles []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	a := &app{log: log.New()}
	cmd := a.newRootCommand()
	code := handleError(cmd.ExecuteContext(ctx), cmd.ErrOrStderr())
	stop()
	os.Exit(code)
}

func (a *app) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "istanbul-sourcemap",
		Short: "Remap Istanbul coverage through embedded source maps",
		Long: `istanbul-sourcemap rewrites Istanbul coverage recorded against generated
files into coverage of the original sources, using the source map each
coverage entry carries as inputSourceMap.

Options may also be given in ISTANBUL_SOURCEMAP_FLAGS, e.g. "lenient,cache_size=64".
Flags on the command line take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&a.logLevel, "log-level", "info", "log level: error, warn, info, debug or trace")
	pf.StringSliceVar(&a.envFiles, "env-file", nil, "load environment variables from `file` (default .env, if present)")

	cmd.AddCommand(
		a.newTransformCommand(),
		a.newCheckCommand(),
		a.newSummaryCommand(),
		a.newVersionCommand(),
	)
	return cmd
}

// setup loads the environment and configures logging before any subcommand
// runs.
func (a *app) setup(cmd *cobra.Command) error {
	a.log.SetOutput(cmd.ErrOrStderr())

	flags, err := config.Load(a.envFiles...)
	if err != nil {
		return err
	}
	a.flags = flags

	level := a.logLevel
	if flags.Verbose && !cmd.Flags().Changed("log-level") {
		level = "debug"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "invalid --log-level")
	}
	a.log.SetLevel(lvl)
	return nil
}

// addRemapFlags registers the flags that tune the remapper.
func addRemapFlags(fs *pflag.FlagSet) {
	fs.Bool("lenient", false, "pass files with broken source maps through instead of failing")
	fs.Int("cache-size", defaultCacheSize, "number of decoded source maps to keep for reuse, 0 disables the cache")
}

// remapper builds a Remapper from the environment and the flags registered
// by addRemapFlags. Flags set on the command line win.
func (a *app) remapper(fs *pflag.FlagSet) (*istanbul.Remapper, error) {
	opts := istanbul.Options{
		Lenient:   a.flags.Lenient,
		CacheSize: a.flags.CacheSize,
		Logger:    a.log,
	}
	if fs.Changed("lenient") {
		opts.Lenient, _ = fs.GetBool("lenient")
	}
	// cache_size=0 in the environment means unset.
	if fs.Changed("cache-size") || opts.CacheSize == 0 {
		opts.CacheSize, _ = fs.GetInt("cache-size")
	}
	return istanbul.NewWithOptions(opts)
}

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and platform",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "istanbul-sourcemap %s (%s)\n", istanbul.Version, istanbul.Platform())
		},
	}
}

// exitCodes of istanbul errors by kind. Any other failure exits with 1.
var exitCodes = map[istanbul.Kind]int{
	istanbul.KindParse:    2,
	istanbul.KindDecode:   3,
	istanbul.KindBoundary: 4,
}

// handleError prints err to w and returns the exit code for it.
func handleError(err error, w io.Writer) int {
	var (
		list errorList.ErrorList
		ierr *istanbul.Error
	)
	switch {
	case err == nil:
		return 0
	case errors.As(err, &list):
		for _, entry := range list {
			fmt.Fprintln(w, entry)
		}
		return 1
	case errors.As(err, &ierr):
		fmt.Fprintln(w, err)
		if code, ok := exitCodes[ierr.Kind]; ok {
			return code
		}
		return 1
	default:
		fmt.Fprintln(w, err)
		return 1
	}
}
