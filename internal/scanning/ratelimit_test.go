package scanning

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// countingClient is a mock implementation of Client
type countingClient struct {
	extracts int
	analyses int
	closed   bool
}

func (c *countingClient) ExtractText(ctx context.Context, base64Data string, mimeType string) (string, error) {
	c.extracts++
	return "text", nil
}

func (c *countingClient) Analyze(ctx context.Context, text string, base64Data string, mimeType string) (string, error) {
	c.analyses++
	return "analysis", nil
}

func (c *countingClient) Close() error {
	c.closed = true
	return nil
}

var _ = Describe("RateLimited", func() {
	var next *countingClient

	BeforeEach(func() {
		next = &countingClient{}
	})

	When("the rate is not positive", func() {
		It("should return the wrapped client", func() {
			Expect(NewRateLimited(next, 0, 1)).To(BeIdenticalTo(next))
		})
	})

	When("tokens are available", func() {
		It("should pass calls through", func() {
			client := NewRateLimited(next, 10, 2)
			_, err := client.ExtractText(context.Background(), "AAAA", "image/png")
			Expect(err).NotTo(HaveOccurred())
			_, err = client.Analyze(context.Background(), "text", "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(next.extracts).To(Equal(1))
			Expect(next.analyses).To(Equal(1))
		})
	})

	When("the context is already cancelled", func() {
		It("should not call the wrapped client", func() {
			client := NewRateLimited(next, 0.001, 1)
			// Drain the single burst token
			_, err := client.ExtractText(context.Background(), "AAAA", "image/png")
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err = client.Analyze(ctx, "text", "", "")
			Expect(err).To(MatchError(ContainSubstring("rate limiter")))
			Expect(next.analyses).To(BeZero())
		})
	})

	It("should close the wrapped client", func() {
		Expect(NewRateLimited(next, 1, 1).Close()).To(Succeed())
		Expect(next.closed).To(BeTrue())
	})
})
