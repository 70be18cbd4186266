// SPDX-License-Identifier: MIT

package ghx_test

import (
	"context"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/tagscout/internal/ghx"
)

// mockRunner replays canned stdout keyed on the joined argument list.
type mockRunner struct {
	responses map[string]string
	errors    map[string]error
	calls     []string
}

func (m *mockRunner) Run(_ context.Context, args ...string) (string, error) {
	key := strings.Join(args, " ")
	m.calls = append(m.calls, key)
	if err, ok := m.errors[key]; ok {
		return "", err
	}
	if out, ok := m.responses[key]; ok {
		return out, nil
	}
	return "", fmt.Errorf("unexpected gh invocation: %s", key)
}

var _ = Describe("AuthStatus", func() {
	It("is true when gh auth status succeeds", func() {
		r := &mockRunner{responses: map[string]string{"auth status": "ok"}}
		Expect(ghx.AuthStatus(context.Background(), r)).To(BeTrue())
	})

	It("is false when gh auth status fails", func() {
		r := &mockRunner{errors: map[string]error{"auth status": fmt.Errorf("not logged in")}}
		Expect(ghx.AuthStatus(context.Background(), r)).To(BeFalse())
	})
})

var _ = Describe("ListRepos", func() {
	It("parses the repo list JSON", func() {
		r := &mockRunner{responses: map[string]string{
			"repo list acme --limit 1000 --json name,url": `[
				{"name":"svc-a","url":"https://github.com/acme/svc-a"},
				{"name":"svc-b","url":"https://github.com/acme/svc-b"}
			]`,
		}}
		repos, err := ghx.ListRepos(context.Background(), r, "acme", 1000)
		Expect(err).NotTo(HaveOccurred())
		Expect(repos).To(HaveLen(2))
		Expect(repos[0].Name).To(Equal("svc-a"))
		Expect(repos[1].URL).To(Equal("https://github.com/acme/svc-b"))
	})

	It("propagates runner failures", func() {
		r := &mockRunner{errors: map[string]error{
			"repo list acme --limit 1000 --json name,url": fmt.Errorf("gh: HTTP 401"),
		}}
		_, err := ghx.ListRepos(context.Background(), r, "acme", 1000)
		Expect(err).To(HaveOccurred())
	})

	It("rejects malformed JSON", func() {
		r := &mockRunner{responses: map[string]string{
			"repo list acme --limit 5 --json name,url": "not json",
		}}
		_, err := ghx.ListRepos(context.Background(), r, "acme", 5)
		Expect(err).To(MatchError(ContainSubstring("parsing gh repo list output")))
	})
})

var _ = Describe("ListTags", func() {
	It("returns tag names in API order", func() {
		r := &mockRunner{responses: map[string]string{
			"api repos/acme/svc-a/tags --paginate": `[
				{"name":"v2.0.0","commit":{"sha":"bbb"}},
				{"name":"v1.0.0","commit":{"sha":"aaa"}}
			]`,
		}}
		tags, err := ghx.ListTags(context.Background(), r, "acme", "svc-a")
		Expect(err).NotTo(HaveOccurred())
		Expect(tags).To(Equal([]string{"v2.0.0", "v1.0.0"}))
	})

	It("skips unnamed entries", func() {
		r := &mockRunner{responses: map[string]string{
			"api repos/acme/svc-a/tags --paginate": `[{"name":""},{"name":"v1.0.0"}]`,
		}}
		tags, err := ghx.ListTags(context.Background(), r, "acme", "svc-a")
		Expect(err).NotTo(HaveOccurred())
		Expect(tags).To(Equal([]string{"v1.0.0"}))
	})
})

var _ = Describe("TagCommit", func() {
	const commitJSON = `{
		"sha": "abc1234def",
		"commit": {
			"author": {"name": "Dev One", "email": "dev@acme.io", "date": "2024-03-01T10:00:00Z"},
			"message": "Release v1.0.0\n\nDetails below."
		}
	}`

	It("resolves a lightweight tag directly to its commit", func() {
		r := &mockRunner{responses: map[string]string{
			"api repos/acme/svc-a/git/refs/tags/v1.0.0": `{"object":{"type":"commit","sha":"abc1234def"}}`,
			"api repos/acme/svc-a/commits/abc1234def":   commitJSON,
		}}
		detail, err := ghx.TagCommit(context.Background(), r, "acme", "svc-a", "v1.0.0")
		Expect(err).NotTo(HaveOccurred())
		Expect(detail.CommitID).To(Equal("abc1234def"))
		Expect(detail.Author).To(Equal("Dev One <dev@acme.io>"))
		Expect(detail.CommittedAt).To(Equal("2024-03-01T10:00:00Z"))
		Expect(detail.Message).To(Equal("Release v1.0.0"))
	})

	It("dereferences annotated tags to the target commit", func() {
		r := &mockRunner{responses: map[string]string{
			"api repos/acme/svc-a/git/refs/tags/v1.0.0": `{"object":{"type":"tag","sha":"tagobj"}}`,
			"api repos/acme/svc-a/git/tags/tagobj":      `{"object":{"type":"commit","sha":"abc1234def"}}`,
			"api repos/acme/svc-a/commits/abc1234def":   commitJSON,
		}}
		detail, err := ghx.TagCommit(context.Background(), r, "acme", "svc-a", "v1.0.0")
		Expect(err).NotTo(HaveOccurred())
		Expect(detail.CommitID).To(Equal("abc1234def"))
		Expect(r.calls).To(HaveLen(3))
	})

	It("propagates a failing ref lookup", func() {
		r := &mockRunner{errors: map[string]error{
			"api repos/acme/svc-a/git/refs/tags/v9": fmt.Errorf("gh: Not Found (HTTP 404)"),
		}}
		_, err := ghx.TagCommit(context.Background(), r, "acme", "svc-a", "v9")
		Expect(err).To(HaveOccurred())
	})
})
