// Package pipeline orchestrates a single Brainfuck source string
// through every compiler stage in order: parse, lower, build
// dominators, resolve registers, fold, resolve types, validate, and
// emit. Grounded on cmd/sentra/main.go's
// top-level shape in the teacher — construct the long-lived objects
// once, then run a fixed stage sequence per input — minus the CLI
// argument handling and REPL loop, which belong to cmd/bfjitdump and
// the caller respectively, not to this library package.
package pipeline

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	llvmir "github.com/llir/llvm/ir"

	"bfjit/backend"
	"bfjit/backend/llvmgen"
	"bfjit/bf"
	"bfjit/cache"
	"bfjit/ir"
	"bfjit/jitconfig"
)

// Result is what a successful compile produces: the emitted module,
// the graph it was generated from (kept for diag.Dump, which prints
// both the module and the IR it came from), the ABI Signature that
// module's "bf_main" satisfies, and a correlation ID.
type Result struct {
	ID        uuid.UUID
	Graph     *ir.Graph
	Module    *llvmir.Module
	Signature backend.Signature
}

// Pipeline holds the state a caller reuses across many compiles: the
// codegen environment (§5's "reusing the backend's pipeline object,
// which caches the code-generation environment") and an optional
// dedup cache. A zero Pipeline is not ready to use; construct one with
// New.
type Pipeline struct {
	env   *llvmgen.Env
	cache *cache.Cache
	log   *log.Logger
}

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithCache enables compile-result deduplication against c. Without
// this option every Compile call runs the full pipeline, even for
// source text and config identical to a previous call.
func WithCache(c *cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithLogger traces stage transitions to l. Without this option the
// Pipeline logs nothing, matching §1's "the pipeline does not log by
// default, it is a library."
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// New creates a Pipeline with a fresh codegen environment.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{env: llvmgen.NewEnv()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.log != nil {
		p.log.Printf(format, args...)
	}
}

// Compile runs src through the full pipeline under cfg: parse, lower
// to IR, build dominators, resolve registers, fold, resolve types,
// validate, then emit an LLVM module.
// If the Pipeline was built with WithCache, identical (src, cfg) pairs
// short-circuit to the cached Result without re-running any stage.
func (p *Pipeline) Compile(src string, cfg jitconfig.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	if p.cache == nil {
		return p.compile(src, cfg)
	}

	key := cache.NewKey(src, cfg)
	entry, err := p.cache.Compile(key, func() (any, error) {
		return p.compile(src, cfg)
	})
	if err != nil {
		return nil, err
	}
	return entry.Value.(*Result), nil
}

func (p *Pipeline) compile(src string, cfg jitconfig.Config) (*Result, error) {
	p.logf("pipeline: parsing %d bytes of source", len(src))
	prog := bf.Parse(src)

	g := ir.NewGraph(cfg.CellWidth, cfg.EOFValue)
	p.logf("pipeline: lowering to IR")
	ir.Lower(prog, g)

	p.logf("pipeline: building dominator tree")
	ir.BuildDominators(g)

	p.logf("pipeline: resolving registers")
	ir.ResolveRegs(g)

	p.logf("pipeline: folding")
	ir.Fold(g)

	p.logf("pipeline: resolving types")
	ir.ResolveTypes(g)

	p.logf("pipeline: validating")
	ir.Validate(g)

	p.logf("pipeline: emitting module")
	mod, err := p.env.Emit(g, cfg)
	if err != nil {
		return nil, fmt.Errorf("pipeline: emit: %w", err)
	}

	return &Result{ID: uuid.New(), Graph: g, Module: mod, Signature: llvmgen.Signature(cfg)}, nil
}
