//go:build polkawasm

package allocator

//go:wasm-module env
//go:export ext_allocator_malloc_version_1
func extMalloc(size uint32) uint32

//go:wasm-module env
//go:export ext_allocator_free_version_1
func extFree(ptr uint32)

// Host returns the bridge over the host allocator imports.
func Host() *Bridge {
	return NewBridge(extMalloc, extFree)
}
