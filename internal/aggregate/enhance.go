package aggregate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/skaphos/tagscout/internal/model"
	"github.com/skaphos/tagscout/internal/sortutil"
)

// DeploymentEntry describes where one deployed tag landed.
type DeploymentEntry struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
}

// RepoDeployments lists the deployed tag versions of one repository.
type RepoDeployments struct {
	DeployedVersions map[string]DeploymentEntry `json:"deployed_versions"`
}

// DeploymentConfig maps repository names to their deployment state.
type DeploymentConfig map[string]RepoDeployments

// LoadDeploymentConfig reads a deployment config JSON file.
func LoadDeploymentConfig(path string) (DeploymentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg DeploymentConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse deployment config %q: %w", path, err)
	}
	return cfg, nil
}

// Enhance applies deployment annotations to a copy of the dataset. For a
// record whose repository appears in the config: a listed tag takes the
// configured status/environment; an unlisted tag becomes
// not_deployed/none. Repositories absent from the config keep their
// "unknown" defaults. Group environment summaries and dataset statistics
// are recomputed afterwards.
func Enhance(ds model.AggregatedDataset, cfg DeploymentConfig) model.AggregatedDataset {
	out := ds.Clone()
	for name, group := range out.Tags {
		for i, record := range group.Repositories {
			repoCfg, ok := cfg[record.RepositoryName]
			if !ok {
				continue
			}
			// Key on the map key: loaded datasets may carry groups
			// whose tag_name field is empty.
			if entry, ok := repoCfg.DeployedVersions[name]; ok {
				record.DeploymentStatus = entry.Status
				record.Environment = entry.Environment
				if record.DeploymentStatus == "" {
					record.DeploymentStatus = model.DeploymentUnknown
				}
				if record.Environment == "" {
					record.Environment = model.EnvironmentUnknown
				}
			} else {
				record.DeploymentStatus = model.DeploymentNotDeployed
				record.Environment = model.EnvironmentNone
			}
			group.Repositories[i] = record
		}
		group.Summary.DeploymentEnvironments = environments(group.Repositories)
		out.Tags[name] = group
	}
	out.Statistics = computeStatistics(out.Tags, sortutil.SortedTagNames(out.Tags))
	return out
}
