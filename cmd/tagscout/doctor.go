// SPDX-License-Identifier: MIT
package tagscout

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/skaphos/tagscout/internal/cliio"
	"github.com/skaphos/tagscout/internal/config"
	"github.com/skaphos/tagscout/internal/dataset"
	"github.com/skaphos/tagscout/internal/ghx"
	"github.com/skaphos/tagscout/internal/termstyle"
)

type doctorCheck struct {
	name   string
	status string
	detail string
	// severity: 0 ok, 1 warning, 2 error
	severity int
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment TagScout depends on",
	Long:  "Verifies the gh CLI, its credentials, the config file, and the on-disk dataset, and reports anything that would degrade a scan.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var checks []doctorCheck

		if _, err := exec.LookPath("gh"); err != nil {
			checks = append(checks, doctorCheck{"gh binary", "missing", "organization scans need the GitHub CLI on PATH", 2})
			checks = append(checks, doctorCheck{"gh auth", "skipped", "no gh binary", 1})
		} else {
			checks = append(checks, doctorCheck{"gh binary", "ok", "", 0})
			if ghx.AuthStatus(cmd.Context(), &ghx.GHRunner{}) {
				checks = append(checks, doctorCheck{"gh auth", "ok", "", 0})
			} else {
				checks = append(checks, doctorCheck{"gh auth", "unauthenticated", "run `gh auth login`", 2})
			}
		}

		cfg, cfgPath, err := loadConfig(cmd)
		if err != nil {
			checks = append(checks, doctorCheck{"config", "invalid", err.Error(), 2})
		} else if _, statErr := os.Stat(cfgPath); statErr != nil {
			checks = append(checks, doctorCheck{"config", "defaults", "no config file, using built-in defaults", 1})
		} else {
			checks = append(checks, doctorCheck{"config", "ok", cfgPath, 0})
		}

		if cfg != nil {
			dsPath := config.ResolveDatasetPath(cfgPath, cfg.DatasetPath)
			if ds, err := dataset.Load(dsPath); err != nil {
				if os.IsNotExist(err) {
					checks = append(checks, doctorCheck{"dataset", "absent", "run `tagscout report` to create it", 1})
				} else {
					checks = append(checks, doctorCheck{"dataset", "invalid", err.Error(), 2})
				}
			} else {
				checks = append(checks, doctorCheck{"dataset", "ok", dsPath, 0})
				debugf(cmd, "dataset holds %d tags", ds.Statistics.TotalUniqueTags)
			}
		}

		setColorOutputMode(cmd, "table")
		writeDoctorTable(cmd, checks)
		for _, check := range checks {
			raiseExitCode(check.severity)
		}
		return nil
	},
}

func writeDoctorTable(cmd *cobra.Command, checks []doctorCheck) {
	rows := make([][]string, 0, len(checks))
	for _, check := range checks {
		status := termstyle.Colorize(colorOutputEnabled, check.status, termstyle.ForSeverity(check.severity))
		rows = append(rows, []string{check.name, status, check.detail})
	}
	err := cliio.WriteTable(cmd.OutOrStdout(), colorOutputEnabled, false,
		[]string{"CHECK", "STATUS", "DETAIL"}, rows)
	logOutputWriteFailure(cmd, "doctor table", err)
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
