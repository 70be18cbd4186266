package discovery_test

import (
	"context"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/tagscout/internal/discovery"
)

func initRepo(path, originURL string) {
	repo, err := git.PlainInit(path, false)
	Expect(err).NotTo(HaveOccurred())
	if originURL != "" {
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
			Name: "origin",
			URLs: []string{originURL},
		})
		Expect(err).NotTo(HaveOccurred())
	}
}

var _ = Describe("Discovery", func() {
	It("matches exclude patterns", func() {
		Expect(discovery.MatchesExclude("C:/code/repo/.git", []string{"**/.git/**"})).To(BeTrue())
		Expect(discovery.MatchesExclude("C:/code/repo", []string{"**/node_modules/**"})).To(BeFalse())
	})

	It("scans for git checkouts", func() {
		root := GinkgoT().TempDir()
		repo := filepath.Join(root, "svc-a")
		initRepo(repo, "https://github.com/acme/svc-a")

		refs, err := discovery.Scan(context.Background(), discovery.Options{
			Roots: []string{root},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(HaveLen(1))
		Expect(refs[0].Name).To(Equal("svc-a"))
		Expect(refs[0].LocalPath).To(Equal(repo))
		Expect(refs[0].OriginURL).To(Equal("https://github.com/acme/svc-a"))
	})

	It("leaves the origin URL empty when the checkout has no remote", func() {
		root := GinkgoT().TempDir()
		initRepo(filepath.Join(root, "local-only"), "")

		refs, err := discovery.Scan(context.Background(), discovery.Options{
			Roots: []string{root},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(HaveLen(1))
		Expect(refs[0].OriginURL).To(Equal(""))
	})

	It("respects exclude patterns during scan", func() {
		root := GinkgoT().TempDir()
		initRepo(filepath.Join(root, "vendor", "svc-b"), "")

		refs, err := discovery.Scan(context.Background(), discovery.Options{
			Roots:   []string{root},
			Exclude: []string{"**/vendor/**"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(BeEmpty())
	})

	It("detects linked .git directories", func() {
		root := GinkgoT().TempDir()
		repo := filepath.Join(root, "svc-c")
		initRepo(repo, "")

		gitDir := filepath.Join(root, "svc-c.gitdir")
		Expect(os.Rename(filepath.Join(repo, ".git"), gitDir)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(repo, ".git"), []byte("gitdir: "+gitDir), 0o644)).To(Succeed())

		refs, err := discovery.Scan(context.Background(), discovery.Options{
			Roots: []string{root},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(HaveLen(1))
		Expect(refs[0].LocalPath).To(Equal(repo))
	})

	It("does not recurse into discovered checkouts", func() {
		root := GinkgoT().TempDir()
		outer := filepath.Join(root, "outer")
		initRepo(outer, "")
		initRepo(filepath.Join(outer, "nested"), "")

		refs, err := discovery.Scan(context.Background(), discovery.Options{
			Roots: []string{root},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(HaveLen(1))
		Expect(refs[0].Name).To(Equal("outer"))
	})
})
