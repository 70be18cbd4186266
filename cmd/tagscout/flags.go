package tagscout

import "github.com/spf13/cobra"

const (
	sourceUsage     = "tag source: auto, org, local"
	patternUsage    = "treat the version argument as a prefix pattern instead of an exact version"
	maxResultsUsage = "stop visiting repositories once this many matches are collected (0 = unlimited)"
	tagWindowUsage  = "how many recent tags per repository a pattern scan inspects (0 = all)"
	vPrefixUsage    = "also test the v-prefixed tag form on exact scans"
)

func addFormatFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().StringP("format", "o", "table", usage)
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("pattern", false, patternUsage)
	cmd.Flags().String("source", "auto", sourceUsage)
	cmd.Flags().String("org", "", "GitHub organization to scan")
	cmd.Flags().String("roots", "", "comma-separated root directories for local scans")
	cmd.Flags().String("exclude", "", "comma-separated glob patterns to exclude from local scans")
	cmd.Flags().Bool("follow-symlinks", false, "follow symbolic links during local discovery")
	cmd.Flags().Int("max-results", 0, maxResultsUsage)
	cmd.Flags().Int("tag-window", 0, tagWindowUsage)
	cmd.Flags().Bool("include-v-prefix", true, vPrefixUsage)
}
