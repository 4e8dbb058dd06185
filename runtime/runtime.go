package runtime

import (
	"context"

	"github.com/wippyai/polkawasm/engine"
	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/scale"
)

// Config holds runtime configuration.
type Config struct {
	Engine engine.Config

	// Codec controls how results are decoded. The zero value accepts
	// non-canonical compacts; use scale.DefaultOptions for strict decoding.
	Codec scale.Options

	// Required lists the exports Load insists on. Nil means every entry
	// point in abi.EntryPoints.
	Required []string
}

// Runtime owns the engine that compiles and runs runtime binaries.
type Runtime struct {
	engine *engine.Engine
	cfg    Config
}

// New creates a runtime.
func New(ctx context.Context, cfg Config) (*Runtime, error) {
	eng, err := engine.New(ctx, cfg.Engine)
	if err != nil {
		return nil, errors.Load("create engine", err)
	}
	return &Runtime{engine: eng, cfg: cfg}, nil
}

// Engine returns the underlying engine.
func (r *Runtime) Engine() *engine.Engine {
	return r.engine
}

// Close releases all runtime resources, including every instance.
func (r *Runtime) Close(ctx context.Context) error {
	return r.engine.Close(ctx)
}
