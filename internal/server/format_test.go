package server_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/artis101/rustrate/internal/server"
)

var _ = Describe("ParseFormat", func() {
	It("should accept json", func() {
		f, err := server.ParseFormat("json")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(server.FormatJSON))
	})

	It("should accept text", func() {
		f, err := server.ParseFormat("text")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(server.FormatText))
	})

	It("should be case-insensitive", func() {
		f, err := server.ParseFormat("JSON")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(server.FormatJSON))
	})

	It("should reject unknown formats", func() {
		_, err := server.ParseFormat("xml")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("json, text"))
	})
})
