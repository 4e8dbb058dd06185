//go:build polkawasm

package api

import (
	"runtime"

	"github.com/wippyai/polkawasm/abi"
	"github.com/wippyai/polkawasm/allocator"
)

//go:wasm-module env
//go:export ext_logging_log_version_1
func extLoggingLog(level uint32, target, message uint64)

//go:wasm-module env
//go:export ext_logging_max_level_version_1
func extLoggingMaxLevel() uint32

func span(b []byte) uint64 {
	return uint64(abi.Pack(allocator.Pointer(b), uint32(len(b))))
}

// HostLog writes an entry through the host logging import.
func HostLog(level uint32, target, message []byte) {
	extLoggingLog(level, span(target), span(message))
	runtime.KeepAlive(target)
	runtime.KeepAlive(message)
}

// HostMaxLevel returns the most verbose level the host accepts.
func HostMaxLevel() uint32 {
	return extLoggingMaxLevel()
}
