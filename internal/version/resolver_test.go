package version_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/tagscout/internal/version"
)

var _ = Describe("ResolveExact", func() {
	It("returns the exact form before the v-prefixed form", func() {
		candidates, err := version.ResolveExact("0.75.5", true)
		Expect(err).NotTo(HaveOccurred())
		Expect(candidates).To(Equal([]string{"0.75.5", "v0.75.5"}))
	})

	It("does not double a leading v", func() {
		candidates, err := version.ResolveExact("v1.2.3", true)
		Expect(err).NotTo(HaveOccurred())
		Expect(candidates).To(Equal([]string{"v1.2.3"}))
	})

	It("omits the v-prefixed form when not requested", func() {
		candidates, err := version.ResolveExact("1.2.3", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(candidates).To(Equal([]string{"1.2.3"}))
	})

	It("rejects an empty version", func() {
		_, err := version.ResolveExact("  ", true)
		Expect(errors.Is(err, version.ErrInvalidPattern)).To(BeTrue())
	})
})

var _ = Describe("ResolvePattern", func() {
	It("matches prefix and exact forms", func() {
		match, err := version.ResolvePattern("0.75")
		Expect(err).NotTo(HaveOccurred())

		Expect(match("0.75.5")).To(BeTrue())
		Expect(match("v0.75.5")).To(BeTrue())
		Expect(match("0.75")).To(BeTrue())
		Expect(match("v0.75")).To(BeTrue())
	})

	It("requires the dot separator after the prefix", func() {
		match, err := version.ResolvePattern("0.75")
		Expect(err).NotTo(HaveOccurred())

		Expect(match("0.750")).To(BeFalse())
		Expect(match("0.75.0")).To(BeTrue())
	})

	It("treats regex metacharacters as literals", func() {
		match, err := version.ResolvePattern("1.0")
		Expect(err).NotTo(HaveOccurred())

		// A regex-significant "." must not match arbitrary characters.
		Expect(match("1x0")).To(BeFalse())
		Expect(match("1.0.2")).To(BeTrue())
	})

	It("rejects an empty pattern", func() {
		_, err := version.ResolvePattern("")
		Expect(errors.Is(err, version.ErrInvalidPattern)).To(BeTrue())
	})
})
