package abi

// Entry point names exported by a runtime.
const (
	CoreVersion                    = "Core_version"
	CoreInitializeBlock            = "Core_initialize_block"
	CoreExecuteBlock               = "Core_execute_block"
	BlockBuilderApplyExtrinsic     = "BlockBuilder_apply_extrinsic"
	BlockBuilderFinalizeBlock      = "BlockBuilder_finalize_block"
	BlockBuilderInherentExtrinsics = "BlockBuilder_inherent_extrinisics"
	BlockBuilderCheckInherents     = "BlockBuilder_check_inherents"
	BlockBuilderRandomSeed         = "BlockBuilder_random_seed"
)

// EntryPoint describes the raw signature of an export: (i32, i32) -> i64,
// or (i32, i32) -> () when Void is set.
type EntryPoint struct {
	Name    string
	Void    bool
	Mutates bool
}

// EntryPoints lists every export a runtime must provide.
var EntryPoints = []EntryPoint{
	{Name: CoreVersion},
	{Name: CoreInitializeBlock, Void: true, Mutates: true},
	{Name: CoreExecuteBlock, Void: true, Mutates: true},
	{Name: BlockBuilderApplyExtrinsic, Mutates: true},
	{Name: BlockBuilderFinalizeBlock, Mutates: true},
	{Name: BlockBuilderInherentExtrinsics},
	{Name: BlockBuilderCheckInherents},
	{Name: BlockBuilderRandomSeed},
}

// LookupEntryPoint returns the entry point with the given name.
func LookupEntryPoint(name string) (EntryPoint, bool) {
	for _, ep := range EntryPoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return EntryPoint{}, false
}
