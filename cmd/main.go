package main

import (
	"fmt"
	"os"

	"github.com/dekho-agent/device-bridge/pkg/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "device-bridge",
		Short:         "Device Bridge answers device identity calls on a method channel",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "path to the config file")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newInvokeCommand(&configPath))
	rootCmd.AddCommand(newConfigCommand())
	return rootCmd
}
