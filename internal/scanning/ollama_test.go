package scanning

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server   *ghttp.Server
		client   *Ollama
		received ollamaChatRequest
		reply    ollamaChatResponse
		status   int
	)

	captureRequest := func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, &received)).To(Succeed())
	}

	BeforeEach(func() {
		server = ghttp.NewServer()
		received = ollamaChatRequest{}
		status = http.StatusOK
		reply = ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "Invoice #123\nTotal: $50"},
			Done:    true,
		}
		var err error
		client, err = NewOllama(server.URL(), ModelConfig{OCRModel: "llava", AnalysisModel: "qwen2-vl", ThinkingBudget: 1024})
		Expect(err).NotTo(HaveOccurred())
	})

	JustBeforeEach(func() {
		server.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest("POST", "/api/chat"),
			ghttp.VerifyContentType("application/json"),
			captureRequest,
			ghttp.RespondWithJSONEncodedPtr(&status, &reply),
		))
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("ExtractText", func() {
		var (
			text string
			err  error
		)

		JustBeforeEach(func() {
			text, err = client.ExtractText(context.Background(), "iVBORw0KGgo=", "image/png")
		})

		It("should return the transcript", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Invoice #123\nTotal: $50"))
		})

		It("should use the OCR model without thinking", func() {
			Expect(received.Model).To(Equal("llava"))
			Expect(received.Think).To(BeFalse())
			Expect(received.Stream).To(BeFalse())
		})

		It("should attach the document as an image", func() {
			Expect(received.Messages).To(HaveLen(2))
			Expect(received.Messages[1].Images).To(Equal([]string{"iVBORw0KGgo="}))
			Expect(received.Messages[1].Content).To(Equal(extractPrompt))
		})

		When("the model returns nothing", func() {
			BeforeEach(func() {
				reply.Message.Content = ""
			})

			It("should return the default transcript", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(text).To(Equal(NoTextExtracted))
			})
		})

		When("the server fails", func() {
			BeforeEach(func() {
				status = http.StatusInternalServerError
			})

			It("should return an error with the status", func() {
				Expect(err).To(MatchError(ContainSubstring("status 500")))
			})
		})
	})

	Describe("Analyze", func() {
		var (
			analysis string
			err      error
			data     string
		)

		BeforeEach(func() {
			data = ""
			reply.Message.Content = "1. Invoice\n2. No dates\n3. Acme Corp\n4. Pay $50"
		})

		JustBeforeEach(func() {
			analysis, err = client.Analyze(context.Background(), "Invoice #123", data, "image/png")
		})

		It("should return the analysis", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(analysis).To(Equal("1. Invoice\n2. No dates\n3. Acme Corp\n4. Pay $50"))
		})

		It("should use the analysis model with thinking enabled", func() {
			Expect(received.Model).To(Equal("qwen2-vl"))
			Expect(received.Think).To(BeTrue())
		})

		It("should send text only when no document is held", func() {
			Expect(received.Messages[1].Images).To(BeEmpty())
			Expect(received.Messages[1].Content).To(ContainSubstring("Invoice #123"))
		})

		When("the original document is held", func() {
			BeforeEach(func() {
				data = "iVBORw0KGgo="
			})

			It("should attach it", func() {
				Expect(received.Messages[1].Images).To(HaveLen(1))
			})
		})

		When("the model returns nothing", func() {
			BeforeEach(func() {
				reply.Message.Content = "  "
			})

			It("should return an error", func() {
				Expect(err).To(HaveOccurred())
				Expect(analysis).To(BeEmpty())
			})
		})
	})
})
