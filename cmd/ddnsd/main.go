// Command ddnsd watches the host's externally-visible IP address and keeps
// a configured set of DNS records pointed at it.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kuadrant/ddns-operator/internal/ddnserr"
)

var (
	gitSHA  string // injected at link time via -ldflags
	version string // injected at link time via -ldflags
	verbose bool
)

const (
	exitCleanShutdown = 0
	exitConfigError   = 1
	exitRuntimeError  = 2
)

func main() {
	root := &cobra.Command{
		Use:   "ddnsd",
		Short: "Dynamic DNS daemon",
		Long:  "ddnsd watches the host's externally-visible IP address and keeps configured DNS records pointed at it.",
		RunE:  runRun,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug) logging")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the daemon (the default when no subcommand is given)",
		RunE:  runRun,
	})
	root.AddCommand(versionCommand())
	root.AddCommand(validateCommand())

	root.SetArgs(os.Args[1:])

	if err := root.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
	os.Exit(exitCleanShutdown)
}

func exitCodeFor(err error) int {
	if ddnserr.Is(err, ddnserr.KindConfig) {
		return exitConfigError
	}
	return exitRuntimeError
}
