package model_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/tagscout/internal/model"
)

var _ = Describe("ScanResult", func() {
	It("counts each repository once across multiple matches", func() {
		res := model.ScanResult{
			Matches: []model.TagMatch{
				{TagName: "0.75.1", Repository: model.RepositoryRef{Name: "svc-a"}},
				{TagName: "0.75.2", Repository: model.RepositoryRef{Name: "svc-a"}},
				{TagName: "0.75.1", Repository: model.RepositoryRef{Name: "svc-b"}},
			},
		}
		Expect(res.RepositoryNames()).To(Equal([]string{"svc-a", "svc-b"}))
	})

	It("returns no names for an empty result", func() {
		Expect(model.ScanResult{}.RepositoryNames()).To(BeEmpty())
	})
})

var _ = Describe("AggregatedDataset clone", func() {
	It("copies tags deeply", func() {
		ds := model.AggregatedDataset{
			Metadata: model.Metadata{Organization: "acme"},
			Tags: map[string]model.TagGroup{
				"1.0.0": {
					TagName: "1.0.0",
					Repositories: []model.RepositoryTagRecord{
						{RepositoryName: "svc-a", Environment: model.EnvironmentUnknown},
					},
					Summary: model.TagSummary{
						TotalRepositories:      1,
						DeploymentEnvironments: []string{"prod"},
					},
				},
			},
		}

		clone := ds.Clone()
		clone.Tags["1.0.0"].Repositories[0] = model.RepositoryTagRecord{RepositoryName: "svc-b"}
		clone.Tags["2.0.0"] = model.TagGroup{TagName: "2.0.0"}

		Expect(ds.Tags).To(HaveLen(1))
		Expect(ds.Tags["1.0.0"].Repositories[0].RepositoryName).To(Equal("svc-a"))
		Expect(ds.Tags["1.0.0"].Summary.DeploymentEnvironments).To(Equal([]string{"prod"}))
	})

	It("preserves a nil tags map", func() {
		clone := model.AggregatedDataset{}.Clone()
		Expect(clone.Tags).To(BeNil())
	})
})
