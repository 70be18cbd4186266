// SPDX-License-Identifier: MIT

package source_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/tagscout/internal/model"
	"github.com/skaphos/tagscout/internal/source"
)

func initTaggedRepo(path, originURL string) {
	repo, err := git.PlainInit(path, false)
	Expect(err).NotTo(HaveOccurred())
	wt, err := repo.Worktree()
	Expect(err).NotTo(HaveOccurred())
	Expect(os.WriteFile(filepath.Join(path, "a.txt"), []byte("a"), 0o644)).To(Succeed())
	_, err = wt.Add("a.txt")
	Expect(err).NotTo(HaveOccurred())
	hash, err := wt.Commit("Release v1.0.0", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Dev One",
			Email: "dev@acme.io",
			When:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
	})
	Expect(err).NotTo(HaveOccurred())
	_, err = repo.CreateTag("v1.0.0", hash, nil)
	Expect(err).NotTo(HaveOccurred())
	if originURL != "" {
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{originURL}})
		Expect(err).NotTo(HaveOccurred())
	}
}

var _ = Describe("Local", func() {
	var (
		ctx  context.Context
		root string
	)

	BeforeEach(func() {
		ctx = context.Background()
		root = GinkgoT().TempDir()
	})

	It("discovers checkouts under its roots", func() {
		initTaggedRepo(filepath.Join(root, "svc-a"), "https://github.com/acme/svc-a.git")
		src := &source.Local{Roots: []string{root}}

		refs, err := src.Repositories(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(HaveLen(1))
		Expect(refs[0].Name).To(Equal("svc-a"))

		tags, err := src.Tags(ctx, refs[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(tags).To(Equal([]string{"v1.0.0"}))

		info, err := src.TagInfo(ctx, refs[0], "v1.0.0")
		Expect(err).NotTo(HaveOccurred())
		Expect(info).NotTo(BeNil())
		Expect(info.Author).To(Equal("Dev One <dev@acme.io>"))
		Expect(info.CommittedAt).To(Equal("2024-03-01T10:00:00Z"))
		Expect(info.Message).To(Equal("Release v1.0.0"))
	})

	It("reads unreadable checkouts as no tags", func() {
		src := &source.Local{}
		tags, err := src.Tags(ctx, model.RepositoryRef{Name: "ghost", LocalPath: filepath.Join(root, "ghost")})
		Expect(err).NotTo(HaveOccurred())
		Expect(tags).To(BeEmpty())

		info, err := src.TagInfo(ctx, model.RepositoryRef{Name: "ghost", LocalPath: filepath.Join(root, "ghost")}, "v1.0.0")
		Expect(err).NotTo(HaveOccurred())
		Expect(info).To(BeNil())
	})

	It("derives forge tag URLs from the origin remote", func() {
		src := &source.Local{}
		ref := model.RepositoryRef{Name: "svc-a", OriginURL: "https://github.com/acme/svc-a.git", LocalPath: "/x/svc-a"}
		Expect(src.TagURL(ref, "v1.0.0")).To(Equal("https://github.com/acme/svc-a/releases/tag/v1.0.0"))
	})

	It("falls back to file URLs without an origin", func() {
		src := &source.Local{}
		ref := model.RepositoryRef{Name: "svc-a", LocalPath: "/x/svc-a"}
		Expect(src.TagURL(ref, "v1.0.0")).To(Equal("file:///x/svc-a#refs/tags/v1.0.0"))
	})
})
