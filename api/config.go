package api

import (
	"github.com/wippyai/polkawasm/executive"
	"github.com/wippyai/polkawasm/scale"
	"github.com/wippyai/polkawasm/types"
)

// API names and the versions this runtime implements.
const (
	CoreAPI             = "Core"
	CoreAPIVersion      = 4
	BlockBuilderAPI     = "BlockBuilder"
	BlockBuilderVersion = 6
)

// Config is the immutable configuration of a Runtime.
type Config struct {
	// Version is returned verbatim by Core_version.
	Version types.VersionData

	// Codec controls how entry point arguments are decoded.
	Codec scale.Options

	// Executive holds the chain constants.
	Executive executive.Config
}

// DefaultConfig returns the configuration of the reference runtime.
func DefaultConfig() Config {
	return Config{
		Version:   DefaultVersion(),
		Codec:     scale.DefaultOptions(),
		Executive: executive.DefaultConfig(),
	}
}

// DefaultVersion returns the build metadata of the reference runtime.
func DefaultVersion() types.VersionData {
	return types.VersionData{
		SpecName:         "polkawasm",
		ImplName:         "polkawasm",
		AuthoringVersion: 1,
		SpecVersion:      1,
		ImplVersion:      1,
		Apis: []types.ApiItem{
			types.NewApiItem(CoreAPI, CoreAPIVersion),
			types.NewApiItem(BlockBuilderAPI, BlockBuilderVersion),
		},
		TransactionVersion: 1,
		StateVersion:       1,
	}
}
