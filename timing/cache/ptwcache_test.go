package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv32axi/sim/timing/cache"
)

var _ = Describe("PTWCache", func() {
	It("misses on an address it has never seen", func() {
		c := cache.New()
		_, hit := c.Lookup(0x1000)
		Expect(hit).To(BeFalse())
	})

	It("hits with the filled word after a Fill", func() {
		c := cache.New()
		c.Fill(0x1000, 0xDEADBEEF)
		word, hit := c.Lookup(0x1000)
		Expect(hit).To(BeTrue())
		Expect(word).To(Equal(uint32(0xDEADBEEF)))
	})

	It("distinguishes two different physical addresses", func() {
		c := cache.New()
		c.Fill(0x1000, 0x11111111)
		c.Fill(0x1004, 0x22222222)
		w1, _ := c.Lookup(0x1000)
		w2, _ := c.Lookup(0x1004)
		Expect(w1).To(Equal(uint32(0x11111111)))
		Expect(w2).To(Equal(uint32(0x22222222)))
	})

	It("evicts stale entries on FlushAll", func() {
		c := cache.New()
		c.Fill(0x1000, 0xCAFEBABE)
		c.FlushAll()
		_, hit := c.Lookup(0x1000)
		Expect(hit).To(BeFalse())
	})
})
