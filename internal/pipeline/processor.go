// Package pipeline turns one BGR frame and a parameter snapshot into the two
// images the display shows.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"histoview/internal/logger"
	"histoview/internal/models"
	"histoview/internal/opencv/conversion"
	"histoview/internal/opencv/memory"
	"histoview/internal/opencv/safe"
	"histoview/internal/processing/histogram"
	"histoview/internal/processing/transform"
)

const component = "FrameProcessor"

// Result holds presentation-ready RGBA images for one frame.
type Result struct {
	Processed image.Image
	Histogram image.Image
	Params    models.Params
	Elapsed   time.Duration
}

// FrameProcessor is what the display loop needs from a Processor.
type FrameProcessor interface {
	Process(ctx context.Context, frame *safe.Mat, params models.Params) (*Result, error)
}

type Processor struct {
	memory *memory.Manager
	log    logger.Logger
	stats  *Stats
}

func NewProcessor(log logger.Logger) *Processor {
	return &Processor{
		memory: memory.NewManager(log),
		log:    log,
		stats:  NewStats(),
	}
}

// Process applies params to frame and renders the histogram of its
// grayscale version. frame is left untouched and still owned by the caller.
func (p *Processor) Process(ctx context.Context, frame *safe.Mat, params models.Params) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateMatForOperation(frame, "Process"); err != nil {
		p.stats.recordFailure()
		return nil, fmt.Errorf("input validation failed: %w", err)
	}

	start := time.Now()
	if err := params.Validate(); err != nil {
		p.log.Warning(component, "parameters out of range, clamping", map[string]interface{}{
			"error": err.Error(),
		})
	}
	params = params.Clamp()

	processed, gray, err := transform.Apply(frame, params)
	if err != nil {
		p.stats.recordFailure()
		return nil, fmt.Errorf("transform %s: %w", params.Mode, err)
	}
	defer p.memory.Release(p.memory.Track(processed, "processed"))
	defer p.memory.Release(p.memory.Track(gray, "gray"))

	hist, err := histogram.Render(gray)
	if err != nil {
		p.stats.recordFailure()
		return nil, fmt.Errorf("histogram: %w", err)
	}
	defer p.memory.Release(p.memory.Track(hist, "histogram"))

	processedImage, err := conversion.MatToImage(processed)
	if err != nil {
		p.stats.recordFailure()
		return nil, fmt.Errorf("processed image conversion: %w", err)
	}

	histogramImage, err := conversion.MatToImage(hist)
	if err != nil {
		p.stats.recordFailure()
		return nil, fmt.Errorf("histogram image conversion: %w", err)
	}

	elapsed := time.Since(start)
	p.stats.record(elapsed)

	fields := conversion.Describe(frame).Fields()
	fields["mode"] = params.Mode.String()
	fields["elapsed_ms"] = elapsed.Milliseconds()
	p.log.Debug(component, "frame processed", fields)

	return &Result{
		Processed: processedImage,
		Histogram: histogramImage,
		Params:    params,
		Elapsed:   elapsed,
	}, nil
}

func (p *Processor) Stats() StatsSnapshot {
	return p.stats.Snapshot()
}

func (p *Processor) MemoryStats() memory.Stats {
	return p.memory.Stats()
}

// Leaks lists the tags of intermediates held for longer than age.
func (p *Processor) Leaks(age time.Duration) []string {
	return p.memory.Leaks(age)
}

// Close releases anything still tracked.
func (p *Processor) Close() error {
	if n := p.memory.ReleaseAll(); n > 0 {
		p.log.Warning(component, "released mats left at shutdown", map[string]interface{}{
			"count": n,
		})
	}
	return nil
}
