package document

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltKV", func() {
	var kv *BoltKV

	BeforeEach(func() {
		var err error
		kv, err = NewBoltKV(filepath.Join(GinkgoT().TempDir(), "test.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if kv != nil {
			kv.Close()
		}
	})

	When("the key is missing", func() {
		It("should return nil without an error", func() {
			value, err := kv.Get("missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(BeNil())
		})
	})

	When("the key was set", func() {
		BeforeEach(func() {
			Expect(kv.Set("key", []byte("first"))).To(Succeed())
			Expect(kv.Set("key", []byte("second"))).To(Succeed())
		})

		It("should return the last value", func() {
			value, err := kv.Get("key")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(value)).To(Equal("second"))
		})
	})
})

var _ = Describe("FileKV", func() {
	var (
		tmpDir string
		kv     *FileKV
	)

	BeforeEach(func() {
		tmpDir = filepath.Join(GinkgoT().TempDir(), "data")
		var err error
		kv, err = NewFileKV(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should create the storage directory", func() {
		Expect(tmpDir).To(BeADirectory())
	})

	When("the key is missing", func() {
		It("should return nil without an error", func() {
			value, err := kv.Get(RecordKey)
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(BeNil())
		})
	})

	When("the key was set", func() {
		BeforeEach(func() {
			Expect(kv.Set(RecordKey, []byte(`[]`))).To(Succeed())
		})

		It("should return the stored value", func() {
			value, err := kv.Get(RecordKey)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(value)).To(Equal(`[]`))
		})

		It("should write one file for the key", func() {
			Expect(filepath.Join(tmpDir, RecordKey+".json")).To(BeAnExistingFile())
		})

		It("should not leave temporary files behind", func() {
			entries, err := os.ReadDir(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})
	})

	When("the key contains path separators", func() {
		It("should keep the file inside the directory", func() {
			Expect(kv.Set("../escape", []byte("x"))).To(Succeed())
			Expect(filepath.Join(tmpDir, ".._escape.json")).To(BeAnExistingFile())
		})
	})
})
