// Package cache implements the page-walk cache: a small direct-mapped
// tag store over physical-address word reads on the Sv32 walk path. It
// is not a TLB — it caches raw PTE words, keyed by their physical
// address, and is invalidated wholesale on SFENCE.VMA / satp writes.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// ptwSets/ptwBlockSize give the 512-entry, direct-mapped, 4-byte-block
// shape called for by the page-walk cache's data model.
const (
	ptwSets         = 512
	ptwAssoc        = 1
	ptwBlockSize    = 4
)

// PTWCache is a direct-mapped cache of physical-address word reads,
// built on Akita's cache directory the same way the teacher's L1/L2
// data caches are: the directory owns tags/LRU/validity, this type owns
// the actual word storage alongside it.
type PTWCache struct {
	directory *akitacache.DirectoryImpl
	data      []uint32
}

// New creates a 512-entry direct-mapped PTW cache.
func New() *PTWCache {
	return &PTWCache{
		directory: akitacache.NewDirectory(
			ptwSets,
			ptwAssoc,
			ptwBlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		data: make([]uint32, ptwSets*ptwAssoc),
	}
}

func (c *PTWCache) index(block *akitacache.Block) int {
	return block.SetID*ptwAssoc + block.WayID
}

// Lookup returns the cached word at paddr, if present and valid.
func (c *PTWCache) Lookup(paddr uint32) (uint32, bool) {
	block := c.directory.Lookup(0, uint64(paddr))
	if block == nil || !block.IsValid {
		return 0, false
	}
	c.directory.Visit(block)
	return c.data[c.index(block)], true
}

// Fill installs a freshly read word into the cache, evicting the
// current LRU victim for this address's set if necessary. PTEs are
// never written back through this cache (the walker never mutates A/D
// here, per the Svade decision), so eviction never writes back.
func (c *PTWCache) Fill(paddr uint32, word uint32) {
	victim := c.directory.FindVictim(uint64(paddr))
	if victim == nil {
		return
	}
	victim.Tag = uint64(paddr)
	victim.IsValid = true
	victim.IsDirty = false
	c.data[c.index(victim)] = word
	c.directory.Visit(victim)
}

// FlushAll invalidates every entry, called on SFENCE.VMA and any write
// to satp.
func (c *PTWCache) FlushAll() {
	c.directory.Reset()
}
