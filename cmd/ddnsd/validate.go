package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/kuadrant/ddns-operator/internal/config"
	"github.com/kuadrant/ddns-operator/internal/ddnserr"
)

func validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the daemon's environment configuration without starting it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				fmt.Fprintln(os.Stderr, "configuration error:", err)
				return err
			}
			if err := cfg.Validate(); err != nil {
				fmt.Fprintln(os.Stderr, "configuration invalid:")
				fmt.Fprintln(os.Stderr, err)
				return ddnserr.Config("%v", err)
			}
			renderConfigSummary(cfg)
			return nil
		},
	}
}

func renderConfigSummary(cfg config.Config) {
	fmt.Printf("ip_source: %s  provider: %s  state_store: %s\n",
		cfg.IpSource.Type, cfg.Provider.TypeName(), cfg.StateStore.Type)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Record", "Type", "Enabled"})
	for _, r := range cfg.Records {
		t.AppendRow([]any{r.Name, r.TypeOrDefault(), r.EnabledOrDefault()})
		t.AppendSeparator()
	}
	t.Render()
}
