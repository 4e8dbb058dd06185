package runtime

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/polkawasm/abi"
	"github.com/wippyai/polkawasm/engine"
	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/storage"
)

// Module is a compiled and validated runtime binary.
type Module struct {
	runtime  *Runtime
	compiled wazero.CompiledModule
	exports  []Export
}

// Export is an entry point found in a module.
type Export struct {
	abi.EntryPoint
	Known bool // listed in abi.EntryPoints
}

var (
	entrySig = signature([]api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, []api.ValueType{api.ValueTypeI64})
	voidSig  = signature([]api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, nil)
)

func signature(params, results []api.ValueType) string {
	names := func(ts []api.ValueType) string {
		s := make([]string, len(ts))
		for i, t := range ts {
			s[i] = api.ValueTypeName(t)
		}
		return "(" + strings.Join(s, ", ") + ")"
	}
	return names(params) + " -> " + names(results)
}

// Load compiles wasm and checks that every required export exists with the
// entry point signature, that memory is exported and that every host
// import is provided.
func (r *Runtime) Load(ctx context.Context, wasm []byte) (*Module, error) {
	compiled, err := r.engine.Compile(ctx, wasm)
	if err != nil {
		return nil, err
	}

	if err := r.checkImports(compiled); err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}

	exports, missing := r.checkExports(compiled)
	if len(compiled.ExportedMemories()) == 0 {
		missing["memory"] = "memory not exported"
	}
	if len(missing) > 0 {
		_ = compiled.Close(ctx)
		return nil, errors.NewMissingExportsError(missing)
	}

	return &Module{runtime: r, compiled: compiled, exports: exports}, nil
}

func (r *Runtime) required() []string {
	if r.cfg.Required != nil {
		return r.cfg.Required
	}
	names := make([]string, len(abi.EntryPoints))
	for i, ep := range abi.EntryPoints {
		names[i] = ep.Name
	}
	return names
}

func (r *Runtime) checkExports(compiled wazero.CompiledModule) ([]Export, map[string]string) {
	defs := compiled.ExportedFunctions()
	missing := make(map[string]string)

	for _, name := range r.required() {
		ep, _ := abi.LookupEntryPoint(name)
		def, ok := defs[name]
		if !ok {
			missing[name] = ""
			continue
		}
		want := entrySig
		if ep.Void {
			want = voidSig
		}
		if got := signature(def.ParamTypes(), def.ResultTypes()); got != want {
			missing[name] = fmt.Sprintf("want %s, got %s", want, got)
		}
	}

	var exports []Export
	for name, def := range defs {
		ep, known := abi.LookupEntryPoint(name)
		if !known {
			ep = abi.EntryPoint{Name: name, Void: len(def.ResultTypes()) == 0}
		}
		exports = append(exports, Export{EntryPoint: ep, Known: known})
	}
	sort.Slice(exports, func(i, j int) bool { return exports[i].Name < exports[j].Name })
	return exports, missing
}

func (r *Runtime) checkImports(compiled wazero.CompiledModule) error {
	provided := make(map[string]bool)
	for _, name := range r.engine.HostFunctionNames() {
		provided[name] = true
	}

	var unknown []string
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		if module != engine.HostModule || !provided[name] {
			unknown = append(unknown, module+"."+name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.New(errors.PhaseLoad, errors.KindNotFound).
			Detail("unresolved imports: %s", strings.Join(unknown, ", ")).
			Build()
	}
	return nil
}

// Exports returns the functions the module exports, sorted by name.
func (m *Module) Exports() []Export {
	return m.exports
}

// Instantiate creates an instance whose storage host calls use store.
func (m *Module) Instantiate(ctx context.Context, store storage.Storage) (*Instance, error) {
	inst, err := m.runtime.engine.Instantiate(ctx, m.compiled, store)
	if err != nil {
		return nil, err
	}
	return &Instance{module: m, inst: inst}, nil
}

// Close releases the compiled module.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
