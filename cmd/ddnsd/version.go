package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ddnsd version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("ddnsd version: %s (%s)\n", versionOrDev(), gitSHA)
			return nil
		},
	}
}

func versionOrDev() string {
	if version == "" {
		return "dev"
	}
	return version
}
