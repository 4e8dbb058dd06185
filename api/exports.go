package api

import (
	"sort"

	"github.com/wippyai/polkawasm/abi"
	"github.com/wippyai/polkawasm/errors"
)

// HandlerFunc implements one entry point over its encoded arguments. Void
// entry points return a nil result.
type HandlerFunc func(args []byte) ([]byte, error)

// Export binds an entry point to its handler.
type Export struct {
	abi.EntryPoint
	Handler HandlerFunc
}

// Exports is the table of entry points a runtime provides.
type Exports struct {
	byName map[string]Export
}

// NewExports builds the table from handlers. Every entry point in
// abi.EntryPoints must be present and no other name is accepted.
func NewExports(handlers map[string]HandlerFunc) (*Exports, error) {
	exports := &Exports{byName: make(map[string]Export, len(abi.EntryPoints))}

	missing := make(map[string]string)
	for _, ep := range abi.EntryPoints {
		h, ok := handlers[ep.Name]
		if !ok || h == nil {
			missing[ep.Name] = ""
			continue
		}
		exports.byName[ep.Name] = Export{EntryPoint: ep, Handler: h}
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingExportsError(missing)
	}

	for name := range handlers {
		if _, ok := abi.LookupEntryPoint(name); !ok {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Detail("unknown entry point %q", name).
				Build()
		}
	}
	return exports, nil
}

// Lookup returns the export registered under name.
func (e *Exports) Lookup(name string) (Export, error) {
	exp, ok := e.byName[name]
	if !ok {
		return Export{}, errors.NotFound(errors.PhaseRuntime, "export", name)
	}
	return exp, nil
}

// Names returns the exported names in sorted order.
func (e *Exports) Names() []string {
	names := make([]string, 0, len(e.byName))
	for name := range e.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
