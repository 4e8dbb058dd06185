// Package engine is the host side of the runtime boundary, built on wazero.
//
// An Engine owns a wazero runtime and the "env" host module every runtime
// binary imports:
//
//	ext_allocator_malloc_version_1(size i32) -> i32
//	ext_allocator_free_version_1(ptr i32)
//	ext_storage_get_version_1(key i64) -> i64
//	ext_storage_set_version_1(key i64, value i64)
//	ext_storage_clear_version_1(key i64)
//	ext_storage_exists_version_1(key i64) -> i32
//	ext_storage_root_version_1() -> i64
//	ext_storage_start_transaction_version_1()
//	ext_storage_commit_transaction_version_1()
//	ext_storage_rollback_transaction_version_1()
//	ext_trie_blake2_256_ordered_root_version_1(input i64) -> i32
//	ext_logging_log_version_1(level i32, target i64, message i64)
//	ext_logging_max_level_version_1() -> i32
//
// i64 parameters and results are packed pointer-sizes. Buffers returned to
// the guest are allocated from the instance heap and released by the guest.
//
// # Instances
//
// Each Instance has its own freeing-bump allocator seeded at the guest's
// __heap_base and its own storage. Host functions find the calling
// instance through the call context, so calls must go through Instance.Call.
//
// # Thread Safety
//
// Engine is safe for concurrent use. Instance is NOT thread-safe and should
// be used by a single goroutine.
package engine
