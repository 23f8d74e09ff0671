package session

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/documind/internal/document"
)

var _ = Describe("Capture", func() {
	var (
		capture Capture
		kind    document.Kind
		err     error
	)

	JustBeforeEach(func() {
		kind, err = capture.Validate()
	})

	When("the file is an image", func() {
		BeforeEach(func() {
			capture = Capture{Filename: "IMG_0001.JPG", MIMEType: "Image/JPEG", Data: jpegBytes}
		})

		It("should be accepted as an image", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(kind).To(Equal(document.KindImage))
		})

		It("should normalize the media type", func() {
			Expect(capture.MIMEType).To(Equal("image/jpeg"))
		})
	})

	When("the media type carries parameters", func() {
		BeforeEach(func() {
			capture = Capture{MIMEType: "image/png; charset=binary", Data: []byte("\x89PNG\r\n\x1a\n")}
		})

		It("should drop them", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(capture.MIMEType).To(Equal("image/png"))
		})
	})

	When("the media type is missing", func() {
		When("the extension is known", func() {
			BeforeEach(func() {
				capture = Capture{Filename: "photo.heic", MIMEType: "application/octet-stream", Data: []byte("data")}
			})

			It("should use the extension", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(capture.MIMEType).To(Equal("image/heic"))
			})
		})

		When("only the content identifies the file", func() {
			BeforeEach(func() {
				capture = Capture{Filename: "upload", Data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")}
			})

			It("should sniff the content", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(capture.MIMEType).To(Equal("image/png"))
			})
		})
	})

	When("the file is empty", func() {
		BeforeEach(func() {
			capture = Capture{Filename: "empty.jpg", MIMEType: "image/jpeg"}
		})

		It("should return a capture error", func() {
			var captureErr *CaptureError
			Expect(errors.As(err, &captureErr)).To(BeTrue())
			Expect(err).To(MatchError("invalid capture: file is empty"))
		})
	})

	When("the file is neither image nor PDF", func() {
		BeforeEach(func() {
			capture = Capture{Filename: "song.mp3", MIMEType: "audio/mpeg", Data: []byte("ID3")}
		})

		It("should return a capture error", func() {
			Expect(err).To(MatchError(ContainSubstring(`unsupported media type "audio/mpeg"`)))
		})
	})

	When("the PDF cannot be read", func() {
		BeforeEach(func() {
			capture = Capture{Filename: "scan.pdf", Data: []byte("%PDF-1.4 not really")}
		})

		It("should return a capture error", func() {
			var captureErr *CaptureError
			Expect(errors.As(err, &captureErr)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("reading PDF")))
		})
	})
})
