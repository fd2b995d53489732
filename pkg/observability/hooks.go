// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about pipeline stages, tiled runs, and preview rendering.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnStageStart(ctx, "rasterize")
//	// ... do work ...
//	observability.Pipeline().OnStageComplete(ctx, "rasterize", pixels, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the skeletonization pipeline.
type PipelineHooks interface {
	// Stage events; count is the stage's primary output size (pixels for
	// raster stages, edges for graph stages, lines for vector stages).
	OnStageStart(ctx context.Context, stage string)
	OnStageComplete(ctx context.Context, stage string, count int, duration time.Duration, err error)
}

// =============================================================================
// Tile Hooks
// =============================================================================

// TileHooks receives events from tiled pipeline runs.
type TileHooks interface {
	// OnTileStart records a tile beginning to process.
	OnTileStart(ctx context.Context, col, row int)

	// OnTileComplete records a finished tile and its output line count.
	OnTileComplete(ctx context.Context, col, row, lineCount int, duration time.Duration)

	// OnTileSkipped records a tile skipped because its corridor slice was empty.
	OnTileSkipped(ctx context.Context, col, row int)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from preview rendering.
type RenderHooks interface {
	// OnRenderStart records the start of a render to the given format.
	OnRenderStart(ctx context.Context, format string)

	// OnRenderComplete records a finished render and its output size in bytes.
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, int, time.Duration, error) {}

// NoopTileHooks is a no-op implementation of TileHooks.
type NoopTileHooks struct{}

func (NoopTileHooks) OnTileStart(context.Context, int, int)                        {}
func (NoopTileHooks) OnTileComplete(context.Context, int, int, int, time.Duration) {}
func (NoopTileHooks) OnTileSkipped(context.Context, int, int)                      {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string)                               {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	tileHooks     TileHooks     = NoopTileHooks{}
	renderHooks   RenderHooks   = NoopRenderHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetTileHooks registers custom tile hooks.
// This should be called once at application startup before any tiled runs.
func SetTileHooks(h TileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		tileHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any rendering.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Tile returns the registered tile hooks.
func Tile() TileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return tileHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	tileHooks = NoopTileHooks{}
	renderHooks = NoopRenderHooks{}
}
