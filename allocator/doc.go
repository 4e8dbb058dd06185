// Package allocator provides the memory allocators used on both sides of
// the runtime boundary.
//
// Bridge adapts the host's ext_allocator_malloc_version_1 and
// ext_allocator_free_version_1 imports to polkawasm.Allocator in the guest.
// FreeingBump is the allocator a host runs over guest linear memory, and
// Arena pairs it with an in-process linear memory that tracks buffer
// ownership so tests can assert that every buffer is released exactly once.
package allocator
