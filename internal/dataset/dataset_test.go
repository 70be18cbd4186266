package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/tagscout/internal/dataset"
	"github.com/skaphos/tagscout/internal/model"
)

func validDataset() *model.AggregatedDataset {
	return &model.AggregatedDataset{
		Metadata: model.Metadata{
			Organization:  "acme",
			ScanType:      "specific_tag",
			SchemaVersion: model.SchemaVersion,
		},
		Tags: map[string]model.TagGroup{
			"1.0.0": {
				TagName: "1.0.0",
				Repositories: []model.RepositoryTagRecord{
					{RepositoryName: "svc-a", CommitID: "a1", DeploymentStatus: "unknown", Environment: "unknown"},
				},
				Summary: model.TagSummary{TotalRepositories: 1, DeploymentEnvironments: []string{}},
			},
		},
		Statistics: model.DatasetStatistics{TotalUniqueTags: 1, TotalRepositoriesWithTags: 1, MostCommonTag: "1.0.0"},
	}
}

var _ = Describe("Save and Load", func() {
	It("round-trips a dataset through disk", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "data", "version_tags.json")

		Expect(dataset.Save(validDataset(), path, true)).To(Succeed())

		loaded, err := dataset.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Metadata.Organization).To(Equal("acme"))
		Expect(loaded.Tags["1.0.0"].Repositories).To(HaveLen(1))
	})

	It("writes compact output without indentation", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "tags.json")

		Expect(dataset.Save(validDataset(), path, false)).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Count(strings.TrimSpace(string(data)), "\n")).To(BeZero())
	})

	It("rejects files that are not JSON", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "tags.json")
		Expect(os.WriteFile(path, []byte("not json"), 0o644)).To(Succeed())

		_, err := dataset.Load(path)
		Expect(errors.Is(err, dataset.ErrMalformedDataset)).To(BeTrue())
	})

	It("propagates missing-file errors unchanged", func() {
		_, err := dataset.Load(filepath.Join(GinkgoT().TempDir(), "absent.json"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})
})

var _ = Describe("Validate", func() {
	It("accepts a well-formed dataset", func() {
		Expect(dataset.Validate(validDataset())).To(Succeed())
	})

	It("rejects a group keyed under a different tag name", func() {
		ds := validDataset()
		group := ds.Tags["1.0.0"]
		group.TagName = "2.0.0"
		ds.Tags["1.0.0"] = group

		err := dataset.Validate(ds)
		Expect(errors.Is(err, dataset.ErrMalformedDataset)).To(BeTrue())
	})

	It("rejects duplicate repositories within one group", func() {
		ds := validDataset()
		group := ds.Tags["1.0.0"]
		group.Repositories = append(group.Repositories, group.Repositories[0])
		ds.Tags["1.0.0"] = group

		err := dataset.Validate(ds)
		Expect(err).To(MatchError(ContainSubstring("twice")))
	})

	It("rejects records without a repository name", func() {
		ds := validDataset()
		group := ds.Tags["1.0.0"]
		group.Repositories = []model.RepositoryTagRecord{{CommitID: "a1"}}
		ds.Tags["1.0.0"] = group

		err := dataset.Validate(ds)
		Expect(errors.Is(err, dataset.ErrMalformedDataset)).To(BeTrue())
	})
})
