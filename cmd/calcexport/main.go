// Command calcexport turns a content dump into a render-ready calculator
// dataset and icon atlas.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"craftexport.ai/internal/logging"
)

type rootOptions struct {
	logLevel string
	logJSON  bool
	verbose  bool
}

func (o *rootOptions) logger() (logging.Logger, error) {
	cfg := logging.DefaultConfig()
	lv, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		lv = logging.DebugLevel
	}
	cfg.Level = lv
	cfg.JSON = o.logJSON
	return logging.New(cfg), nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "calcexport",
		Short:         "Export game content into a calculator dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "log as JSON lines")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every diagnostic")

	cmd.AddCommand(newExportCmd(opts), newInspectCmd())
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "calcexport:", err)
		os.Exit(1)
	}
}
