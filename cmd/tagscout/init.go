// SPDX-License-Identifier: MIT
package tagscout

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skaphos/tagscout/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap a TagScout configuration",
	Long:  "Creates a TagScout config file in the current directory by default.",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		cfgPath, err := config.InitConfigPath(flagConfig, cwd)
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfgPath); err == nil {
			if !force {
				return fmt.Errorf("config already exists at %q (use --force to overwrite)", cfgPath)
			}
			// Ensure forced init replaces the existing config file rather than
			// preserving any prior on-disk content.
			if err := os.Remove(cfgPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove existing config %q: %w", cfgPath, err)
			}
		}

		cfg := config.DefaultConfig()
		if org, _ := cmd.Flags().GetString("org"); org != "" {
			cfg.Organization = org
		}
		if len(cfg.Roots) == 0 {
			cfg.Roots = []string{config.ConfigRoot(cfgPath)}
		}

		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", cfgPath); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite existing config without prompting")
	initCmd.Flags().String("org", "", "GitHub organization to record in the config")

	rootCmd.AddCommand(initCmd)
}
