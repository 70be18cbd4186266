package tagscout

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/skaphos/tagscout/internal/cliio"
	"github.com/skaphos/tagscout/internal/config"
	"github.com/skaphos/tagscout/internal/model"
	"github.com/skaphos/tagscout/internal/scan"
	"github.com/skaphos/tagscout/internal/sortutil"
	"github.com/skaphos/tagscout/internal/source"
	"github.com/skaphos/tagscout/internal/strutil"
	"github.com/skaphos/tagscout/internal/termstyle"
	"github.com/skaphos/tagscout/internal/version"
)

var scanCmd = &cobra.Command{
	Use:   "scan <version>",
	Short: "Find a release tag across repositories",
	Long:  "Scans a GitHub organization or local checkout roots for a release tag, either an exact version or a version prefix pattern.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		debugf(cmd, "starting scan")
		cfg, cfgPath, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		debugf(cmd, "using config %s", cfgPath)

		opts, scanType, err := scanOptionsFromFlags(cmd, cfg, args[0])
		if err != nil {
			return err
		}
		src, err := sourceFromFlags(cmd, cfg)
		if err != nil {
			return err
		}
		debugf(cmd, "%s scan for %q", scanType, args[0])

		result, err := scan.Run(cmd.Context(), src, opts)
		if err != nil {
			return err
		}
		sortutil.SortMatches(result.Matches)

		format, _ := cmd.Flags().GetString("format")
		setColorOutputMode(cmd, format)
		switch strings.ToLower(format) {
		case "json":
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		case "table":
			writeScanTable(cmd, result)
		default:
			return fmt.Errorf("unsupported format %q", format)
		}

		if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
			if err := writeScanResultFile(result, outPath); err != nil {
				return err
			}
			debugf(cmd, "wrote scan result to %s", outPath)
		}

		// A scan that finds nothing is still a successful scan.
		infof(cmd, "scan completed: %d matches in %d of %d repositories",
			len(result.Matches), result.RepositoriesWithMatch, result.RepositoriesScanned)
		return nil
	},
}

// writeScanResultFile persists the scan result for a later report --input.
func writeScanResultFile(result *model.ScanResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func writeScanTable(cmd *cobra.Command, result *model.ScanResult) {
	rows := make([][]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		rows = append(rows, []string{
			m.Repository.Name,
			termstyle.Colorize(colorOutputEnabled, m.TagName, termstyle.Healthy),
			strutil.ShortCommit(m.CommitID),
			m.CommittedAt,
			m.Author,
		})
	}
	err := cliio.WriteTable(cmd.OutOrStdout(), colorOutputEnabled, false,
		[]string{"REPO", "TAG", "COMMIT", "DATE", "AUTHOR"}, rows)
	logOutputWriteFailure(cmd, "scan table", err)
}

// loadConfig resolves and loads the effective config. A missing config
// file falls back to defaults so scans work without an init.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	cfgPath, err := config.ResolveConfigPath(flagConfig, cwd)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			defaults := config.DefaultConfig()
			debugf(cmd, "no config at %s, using defaults", cfgPath)
			return &defaults, cfgPath, nil
		}
		return nil, "", err
	}
	return cfg, cfgPath, nil
}

// scanOptionsFromFlags turns the version argument and flags into engine
// options, returning the scan type label used in dataset metadata.
func scanOptionsFromFlags(cmd *cobra.Command, cfg *config.Config, versionArg string) (scan.Options, string, error) {
	pattern, _ := cmd.Flags().GetBool("pattern")
	limit, _ := cmd.Flags().GetInt("max-results")
	window, _ := cmd.Flags().GetInt("tag-window")
	if !cmd.Flags().Changed("max-results") {
		limit = cfg.Defaults.ResultCap
	}
	if !cmd.Flags().Changed("tag-window") {
		window = cfg.Defaults.TagWindow
	}
	includeVPrefix := cfg.Defaults.IncludeVPrefix
	if cmd.Flags().Changed("include-v-prefix") {
		includeVPrefix, _ = cmd.Flags().GetBool("include-v-prefix")
	}

	opts := scan.Options{ResultCap: limit, TagWindow: window}
	if pattern {
		match, err := version.ResolvePattern(versionArg)
		if err != nil {
			return scan.Options{}, "", err
		}
		opts.Match = match
		return opts, "pattern", nil
	}
	candidates, err := version.ResolveExact(versionArg, includeVPrefix)
	if err != nil {
		return scan.Options{}, "", err
	}
	opts.Candidates = candidates
	return opts, "specific_tag", nil
}

// sourceFromFlags picks the tag source: a GitHub organization when
// --org (or the configured organization) is set and --source is not
// forced to local, otherwise discovered local checkouts.
func sourceFromFlags(cmd *cobra.Command, cfg *config.Config) (scan.Source, error) {
	kind, _ := cmd.Flags().GetString("source")
	org, _ := cmd.Flags().GetString("org")
	if org == "" {
		org = cfg.Organization
	}

	timeout := time.Duration(cfg.Defaults.TimeoutSeconds) * time.Second
	switch strings.ToLower(kind) {
	case "org":
		if org == "" {
			return nil, fmt.Errorf("organization scan requires --org or a configured organization")
		}
		return source.NewOrg(org, timeout), nil
	case "local":
		return localSourceFromFlags(cmd, cfg), nil
	case "auto":
		if org != "" {
			return source.NewOrg(org, timeout), nil
		}
		return localSourceFromFlags(cmd, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported source %q", kind)
	}
}

func localSourceFromFlags(cmd *cobra.Command, cfg *config.Config) *source.Local {
	roots, _ := cmd.Flags().GetString("roots")
	exclude, _ := cmd.Flags().GetString("exclude")
	followSymlinks, _ := cmd.Flags().GetBool("follow-symlinks")
	local := &source.Local{
		Roots:          strutil.SplitCSV(roots),
		Exclude:        strutil.SplitCSV(exclude),
		FollowSymlinks: followSymlinks,
	}
	if len(local.Roots) == 0 {
		local.Roots = cfg.Roots
	}
	if len(local.Exclude) == 0 {
		local.Exclude = cfg.Exclude
	}
	return local
}

func init() {
	addScanFlags(scanCmd)
	addFormatFlag(scanCmd, "output format: table or json")
	scanCmd.Flags().String("output", "", "also write the scan result JSON to this file")

	rootCmd.AddCommand(scanCmd)
}
