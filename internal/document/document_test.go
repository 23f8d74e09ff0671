package document

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ScannedDocument", func() {
	Describe("KindFromMediaType", func() {
		It("should map PDFs to pdf", func() {
			Expect(KindFromMediaType("application/pdf")).To(Equal(KindPDF))
		})

		It("should map images to image", func() {
			Expect(KindFromMediaType("image/jpeg")).To(Equal(KindImage))
			Expect(KindFromMediaType("image/heic")).To(Equal(KindImage))
		})
	})

	Describe("TitleFor", func() {
		It("should include the date and time", func() {
			t := time.Date(2026, 10, 17, 14, 5, 0, 0, time.UTC)
			Expect(TitleFor(t)).To(Equal("Scan 10/17/2026 02:05 PM"))
		})
	})

	Describe("TabText", func() {
		doc := ScannedDocument{ExtractedText: "transcript", Analysis: "summary"}

		It("should return the transcript for the text tab", func() {
			Expect(doc.TabText(TabText)).To(Equal("transcript"))
		})

		It("should return the analysis for the analysis tab", func() {
			Expect(doc.TabText(TabAnalysis)).To(Equal("summary"))
		})
	})

	Describe("Validate", func() {
		var doc ScannedDocument

		BeforeEach(func() {
			doc = ScannedDocument{
				ID:            "id",
				CreatedAt:     time.Now(),
				ExtractedText: "text",
				Kind:          KindImage,
			}
		})

		It("should accept a complete document", func() {
			Expect(doc.Validate()).To(Succeed())
		})

		It("should reject a missing transcript", func() {
			doc.ExtractedText = ""
			Expect(doc.Validate()).To(MatchError(ContainSubstring("missing extractedText")))
		})

		It("should reject an unknown kind", func() {
			doc.Kind = "scroll"
			Expect(doc.Validate()).To(MatchError(ContainSubstring("invalid kind")))
		})
	})

	Describe("DownloadFilename", func() {
		It("should derive the name from the title", func() {
			Expect(DownloadFilename("Scan 10/17/2026 02:05 PM")).To(Equal("documind-Scan-10172026-0205-PM.txt"))
		})

		It("should be deterministic", func() {
			Expect(DownloadFilename("Scan A")).To(Equal(DownloadFilename("Scan A")))
		})

		It("should fall back when nothing usable remains", func() {
			Expect(DownloadFilename("///")).To(Equal("documind-scan.txt"))
		})

		It("should truncate long titles", func() {
			name := DownloadFilename("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
			Expect(name).To(HaveLen(len("documind-") + 50 + len(".txt")))
		})
	})
})
