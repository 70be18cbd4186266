// SPDX-License-Identifier: MIT
package tagscout

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skaphos/tagscout/internal/aggregate"
	"github.com/skaphos/tagscout/internal/cliio"
	"github.com/skaphos/tagscout/internal/config"
	"github.com/skaphos/tagscout/internal/dataset"
	"github.com/skaphos/tagscout/internal/model"
	"github.com/skaphos/tagscout/internal/scan"
	"github.com/skaphos/tagscout/internal/sortutil"
	"github.com/skaphos/tagscout/internal/termstyle"
)

var reportCmd = &cobra.Command{
	Use:   "report <version>",
	Short: "Build or update the aggregated tag dataset",
	Long:  "Runs a scan (or reads a saved scan result), aggregates the matches into the tag dataset, optionally applies deployment annotations, and writes the dataset to disk.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgPath, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		debugf(cmd, "using config %s", cfgPath)

		pattern, _ := cmd.Flags().GetBool("pattern")
		scanType := "specific_tag"
		if pattern {
			scanType = "pattern"
		}

		result, err := obtainScanResult(cmd, cfg, args[0])
		if err != nil {
			return err
		}

		org, _ := cmd.Flags().GetString("org")
		if org == "" {
			org = cfg.Organization
		}
		ds := aggregate.Aggregate(*result, org, scanType)

		if deployPath, _ := cmd.Flags().GetString("deployment-config"); deployPath != "" {
			deployCfg, err := aggregate.LoadDeploymentConfig(deployPath)
			if err != nil {
				return err
			}
			ds = aggregate.Enhance(ds, deployCfg)
			debugf(cmd, "applied deployment annotations from %s", deployPath)
		}

		outPath, _ := cmd.Flags().GetString("output")
		if outPath == "" {
			outPath = config.ResolveDatasetPath(cfgPath, cfg.DatasetPath)
		}

		mergeExisting, _ := cmd.Flags().GetBool("merge-existing")
		force, _ := cmd.Flags().GetBool("force")
		if mergeExisting {
			existing, err := dataset.Load(outPath)
			switch {
			case err == nil:
				ds = aggregate.Merge(*existing, ds)
				debugf(cmd, "merged into existing dataset at %s", outPath)
			case os.IsNotExist(err):
				debugf(cmd, "no existing dataset at %s, writing fresh", outPath)
			default:
				return err
			}
		} else if !force {
			if _, err := os.Stat(outPath); err == nil {
				ok, err := cliio.PromptYesNo(cmd.OutOrStdout(), cmd.InOrStdin(),
					fmt.Sprintf("Dataset %s exists. Overwrite? [y/N] ", outPath))
				if err != nil {
					return err
				}
				if !ok {
					infof(cmd, "aborted, dataset unchanged")
					raiseExitCode(1)
					return nil
				}
			}
		}

		compact, _ := cmd.Flags().GetBool("compact")
		if err := dataset.Save(&ds, outPath, !compact); err != nil {
			return err
		}

		setColorOutputMode(cmd, "table")
		writeDatasetSummary(cmd, &ds)
		infof(cmd, "wrote dataset to %s", outPath)
		return nil
	},
}

// obtainScanResult reads a saved scan result when --input is set, and
// runs a live scan otherwise.
func obtainScanResult(cmd *cobra.Command, cfg *config.Config, versionArg string) (*model.ScanResult, error) {
	if inputPath, _ := cmd.Flags().GetString("input"); inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, err
		}
		var result model.ScanResult
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("parsing scan result %s: %w", inputPath, err)
		}
		return &result, nil
	}

	opts, _, err := scanOptionsFromFlags(cmd, cfg, versionArg)
	if err != nil {
		return nil, err
	}
	src, err := sourceFromFlags(cmd, cfg)
	if err != nil {
		return nil, err
	}
	return scan.Run(cmd.Context(), src, opts)
}

func writeDatasetSummary(cmd *cobra.Command, ds *model.AggregatedDataset) {
	var rows [][]string
	for _, name := range sortutil.SortedTagNames(ds.Tags) {
		group := ds.Tags[name]
		envs := strings.Join(group.Summary.DeploymentEnvironments, ",")
		if envs == "" {
			envs = "-"
		} else {
			envs = termstyle.Colorize(colorOutputEnabled, envs, termstyle.Healthy)
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d", group.Summary.TotalRepositories),
			group.Summary.LatestCommitDate,
			envs,
		})
	}
	err := cliio.WriteTable(cmd.OutOrStdout(), colorOutputEnabled, false,
		[]string{"TAG", "REPOS", "LATEST_COMMIT", "ENVIRONMENTS"}, rows)
	logOutputWriteFailure(cmd, "dataset summary", err)

	infof(cmd, "dataset: %d tags, %d repositories, most common %s",
		ds.Statistics.TotalUniqueTags,
		ds.Statistics.TotalRepositoriesWithTags,
		ds.Statistics.MostCommonTag)
}

func init() {
	addScanFlags(reportCmd)
	reportCmd.Flags().String("input", "", "aggregate a saved scan result JSON file instead of scanning")
	reportCmd.Flags().String("output", "", "dataset file to write (default: configured dataset path)")
	reportCmd.Flags().String("deployment-config", "", "JSON file mapping repositories and tags to deployment status")
	reportCmd.Flags().Bool("merge-existing", false, "merge into the existing dataset instead of replacing it")
	reportCmd.Flags().Bool("compact", false, "write compact JSON instead of indented")
	reportCmd.Flags().Bool("force", false, "overwrite an existing dataset without prompting")

	rootCmd.AddCommand(reportCmd)
}
