package loader_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv32axi/sim/loader"
)

var _ = Describe("Load", func() {
	It("copies the raw file contents verbatim at the image base", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "image.bin")
		Expect(os.WriteFile(path, []byte{0x93, 0x00, 0xA0, 0x00}, 0o644)).To(Succeed())

		img, err := loader.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Base).To(Equal(loader.ImageBase))
		Expect(img.Size()).To(Equal(4))
		Expect(img.Data).To(Equal([]byte{0x93, 0x00, 0xA0, 0x00}))
	})

	It("errors on a missing file", func() {
		_, err := loader.Load(filepath.Join(GinkgoT().TempDir(), "missing.bin"))
		Expect(err).To(HaveOccurred())
	})
})
