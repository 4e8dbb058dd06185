//go:build polkawasm

// Command runtime is the wasm runtime binary. Build it with a TinyGo
// toolchain that provides the polkawasm target:
//
//	tinygo build -target=polkawasm -o runtime.wasm ./cmd/runtime
//
// Every export takes a pointer and length of its SCALE-encoded arguments
// and, unless it is void, returns a packed pointer-size of its result.
package main

import (
	"go.uber.org/zap"

	"github.com/wippyai/polkawasm/abi"
	"github.com/wippyai/polkawasm/allocator"
	"github.com/wippyai/polkawasm/api"
	"github.com/wippyai/polkawasm/executive"
	"github.com/wippyai/polkawasm/storage"
)

var rt *api.Runtime

func instance() *api.Runtime {
	if rt != nil {
		return rt
	}

	log := api.NewHostLogger(api.HostLog, api.ZapLevel(api.HostMaxLevel())).Named("runtime")
	api.SetLogger(log)
	executive.SetLogger(log.Named("executive"))

	r, err := api.New(api.DefaultConfig(), allocator.GuestMemory{}, allocator.Host(), storage.NewHostStorage())
	if err != nil {
		log.Error("runtime construction failed", zap.Error(err))
		panic(err)
	}
	rt = r
	return rt
}

//export Core_version
func coreVersion(ptr, size uint32) uint64 {
	return instance().Call(abi.CoreVersion, ptr, size)
}

//export Core_initialize_block
func coreInitializeBlock(ptr, size uint32) {
	instance().Call(abi.CoreInitializeBlock, ptr, size)
}

//export Core_execute_block
func coreExecuteBlock(ptr, size uint32) {
	instance().Call(abi.CoreExecuteBlock, ptr, size)
}

//export BlockBuilder_apply_extrinsic
func blockBuilderApplyExtrinsic(ptr, size uint32) uint64 {
	return instance().Call(abi.BlockBuilderApplyExtrinsic, ptr, size)
}

//export BlockBuilder_finalize_block
func blockBuilderFinalizeBlock(ptr, size uint32) uint64 {
	return instance().Call(abi.BlockBuilderFinalizeBlock, ptr, size)
}

//export BlockBuilder_inherent_extrinisics
func blockBuilderInherentExtrinsics(ptr, size uint32) uint64 {
	return instance().Call(abi.BlockBuilderInherentExtrinsics, ptr, size)
}

//export BlockBuilder_check_inherents
func blockBuilderCheckInherents(ptr, size uint32) uint64 {
	return instance().Call(abi.BlockBuilderCheckInherents, ptr, size)
}

//export BlockBuilder_random_seed
func blockBuilderRandomSeed(ptr, size uint32) uint64 {
	return instance().Call(abi.BlockBuilderRandomSeed, ptr, size)
}

// TinyGo needs a main function to link a wasm binary.
func main() {}
