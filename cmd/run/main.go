package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	dbm "github.com/cometbft/cometbft-db"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/polkawasm/engine"
	"github.com/wippyai/polkawasm/runtime"
	"github.com/wippyai/polkawasm/scale"
	"github.com/wippyai/polkawasm/storage"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to runtime wasm file")
		callName    = flag.String("call", "", "Entry point to call (optional)")
		hexArg      = flag.String("arg", "", "Hex-encoded SCALE arguments")
		dbDir       = flag.String("db", "", "Directory for a persistent leveldb state (in-memory when empty)")
		list        = flag.Bool("list", false, "List exported entry points and exit")
		verbose     = flag.Bool("v", false, "Log host and guest activity to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -wasm <file.wasm> [-call name] [-arg hex] [-db dir] [-v]")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -list")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			engine.SetLogger(logger)
			runtime.SetLogger(logger)
			defer func() { _ = logger.Sync() }()
		}
	}

	store, closeStore, err := openStore(*dbDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*wasmFile, store); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *callName, *hexArg, store, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore returns an overlay over a leveldb database in dir, or over a
// memory database when dir is empty.
func openStore(dir string) (*storage.Overlay, func(), error) {
	if dir == "" {
		return storage.NewOverlay(storage.NewMemBackend()), func() {}, nil
	}
	db, err := dbm.NewDB("state", dbm.GoLevelDBBackend, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open state: %w", err)
	}
	return storage.NewOverlay(storage.NewDBBackend(db)), func() { _ = db.Close() }, nil
}

func load(ctx context.Context, wasmFile string) (*runtime.Runtime, *runtime.Module, error) {
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	rt, err := runtime.New(ctx, runtime.Config{Codec: scale.DefaultOptions()})
	if err != nil {
		return nil, nil, fmt.Errorf("create runtime: %w", err)
	}

	mod, err := rt.Load(ctx, data)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, nil, fmt.Errorf("load runtime: %w", err)
	}
	return rt, mod, nil
}

func run(wasmFile, callName, hexArg string, store *storage.Overlay, listOnly bool) error {
	ctx := context.Background()

	rt, mod, err := load(ctx, wasmFile)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	fmt.Printf("Runtime: %s\n", wasmFile)
	fmt.Printf("\nExported entry points:\n")
	for _, exp := range mod.Exports() {
		fmt.Printf("  %s\n", formatExport(exp))
	}

	if listOnly {
		return nil
	}

	args, err := decodeHex(hexArg)
	if err != nil {
		return fmt.Errorf("arguments: %w", err)
	}

	inst, err := mod.Instantiate(ctx, store)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer inst.Close(ctx)

	if callName == "" {
		v, err := inst.Version(ctx)
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		fmt.Printf("\n%s/%s spec %d impl %d state v%d\n", v.SpecName, v.ImplName, v.SpecVersion, v.ImplVersion, v.StateVersion)
		for _, a := range v.Apis {
			fmt.Printf("  api 0x%x v%d\n", a.ID[:], a.Version)
		}
		return nil
	}

	fmt.Printf("\nCalling %s(0x%x)...\n", callName, args)
	result, err := inst.Call(ctx, callName, args)
	if err != nil {
		return fmt.Errorf("call %s: %w", callName, err)
	}
	if result == nil {
		fmt.Println("Result: ()")
		return nil
	}
	fmt.Printf("Result: 0x%x\n", result)
	return nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

func formatExport(exp runtime.Export) string {
	result := " -> i64"
	if exp.Void {
		result = ""
	}
	s := exp.Name + "(ptr, len)" + result
	if !exp.Known {
		s += " [unknown]"
	}
	return s
}
