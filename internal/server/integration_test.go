package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/documind/internal/document"
	"github.com/zombor/documind/internal/session"
)

var _ = Describe("Integration", func() {
	var (
		tempDir  string
		dbPath   string
		kv       *document.BoltKV
		client   *mockClient
		ghServer *ghttp.Server
		err      error
	)

	openServer := func() *Server {
		kv, err = document.NewBoltKV(dbPath)
		Expect(err).NotTo(HaveOccurred())
		store := document.NewStore(kv)
		store.LoadAll()
		return NewServer(session.New(store, client, session.Options{}), BasicAuth{})
	}

	BeforeEach(func() {
		tempDir, err = os.MkdirTemp("", "documind-test-*")
		Expect(err).NotTo(HaveOccurred())
		dbPath = filepath.Join(tempDir, "documind.db")

		client = &mockClient{text: "Hello from the scanner", analysis: "A greeting."}
		ghServer = ghttp.NewServer()
	})

	AfterEach(func() {
		if ghServer != nil {
			ghServer.Close()
		}
		if kv != nil {
			kv.Close()
		}
		if tempDir != "" {
			os.RemoveAll(tempDir)
		}
	})

	It("should scan, analyze, and keep the document across restarts", func() {
		server := openServer()
		ghServer.AppendHandlers(server.ServeHTTP, server.ServeHTTP)

		// --- Step 1: Capture ---
		body, contentType := multipartBody("file", "page.jpg", jpegBytes)
		resp, err := http.Post(ghServer.URL()+"/api/captures", contentType, body)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		var created document.ScannedDocument
		Expect(json.NewDecoder(resp.Body).Decode(&created)).To(Succeed())
		resp.Body.Close()
		Expect(created.ExtractedText).To(Equal("Hello from the scanner"))

		// --- Step 2: Analysis ---
		resp, err = http.Post(ghServer.URL()+"/api/documents/"+created.ID+"/analysis", "", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		resp.Body.Close()

		// --- Step 3: Restart on the same database ---
		Expect(kv.Close()).To(Succeed())
		ghServer.Close()

		restarted := openServer()
		ghServer = ghttp.NewServer()
		ghServer.AppendHandlers(restarted.ServeHTTP)

		resp, err = http.Get(ghServer.URL() + "/api/documents")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		var docs []document.ScannedDocument
		Expect(json.NewDecoder(resp.Body).Decode(&docs)).To(Succeed())
		Expect(docs).To(HaveLen(1))
		Expect(docs[0].ID).To(Equal(created.ID))
		Expect(docs[0].Analysis).To(Equal("A greeting."))
		Expect(docs[0].CreatedAt).To(BeTemporally("~", created.CreatedAt))
	})
})
