package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/shiftparse/internal/api"
	"github.com/jackzampolin/shiftparse/internal/config"
	"github.com/jackzampolin/shiftparse/internal/home"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to the home directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		path := h.ConfigPath()
		if cfgFile != "" {
			path = cfgFile
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		fmt.Printf("Put credentials in %s or your environment.\n", h.EnvPath())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := loadConfig()
		if err != nil {
			return err
		}
		c := *mgr.Get()
		c.Service.APIKey = maskSecret(c.Service.APIKey)
		c.Service.CustomerID = maskSecret(c.Service.CustomerID)
		if path := mgr.ConfigFile(); path != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", path)
		}
		return api.Output(c)
	},
}

// maskSecret hides literal credentials. ${ENV} references are shown as-is.
func maskSecret(s string) string {
	if s == "" || strings.HasPrefix(s, "${") {
		return s
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
