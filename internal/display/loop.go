package display

import (
	"context"
	"errors"
	"time"

	"histoview/internal/logger"
	"histoview/internal/models"
	"histoview/internal/pipeline"
	"histoview/internal/source"

	"github.com/google/uuid"
)

const component = "DisplayLoop"

type Options struct {
	// FrameInterval is the minimum delay between camera frames. Zero runs
	// frames back to back.
	FrameInterval time.Duration
	// MaxFrames ends a continuous run as Completed after that many frames.
	// Zero is unbounded.
	MaxFrames int
}

// Outcome summarises a finished run.
type Outcome struct {
	SessionID string
	State     models.LoopState
	Frames    int
	Err       error
}

type Loop struct {
	processor pipeline.FrameProcessor
	source    *source.Source
	params    ParamsProvider
	surface   Surface
	sessions  *models.SessionRepository
	log       logger.Logger
	opts      Options
}

func NewLoop(
	processor pipeline.FrameProcessor,
	src *source.Source,
	params ParamsProvider,
	surface Surface,
	log logger.Logger,
	opts Options,
) *Loop {
	if opts.FrameInterval < 0 {
		opts.FrameInterval = 0
	}
	return &Loop{
		processor: processor,
		source:    src,
		params:    params,
		surface:   surface,
		sessions:  models.NewSessionRepository(),
		log:       log,
		opts:      opts,
	}
}

// Session reports the latest run, finished or not.
func (l *Loop) Session() models.Session {
	return l.sessions.Current()
}

// RunContinuous opens a device with open and shows frames from it until ctx
// is cancelled or a read fails. The device is opened only when the run starts
// and is closed on every exit path. Cancellation is checked between frames.
func (l *Loop) RunContinuous(ctx context.Context, open source.Opener) Outcome {
	id := l.begin(models.SourceCamera)

	if ctx.Err() != nil {
		return l.end(id, models.StateStoppedByFlag, 0, nil)
	}

	dev, err := open()
	if err != nil {
		l.surface.ShowWarning(MsgCameraOpen)
		return l.end(id, models.StateStoppedByFailure, 0, err)
	}
	defer l.release(id, dev)

	var tick <-chan time.Time
	if l.opts.FrameInterval > 0 {
		ticker := time.NewTicker(l.opts.FrameInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	frames := 0
	for {
		if ctx.Err() != nil {
			return l.end(id, models.StateStoppedByFlag, frames, nil)
		}

		params := l.params.Snapshot()

		frame, err := l.source.Acquire(ctx, source.Request{Kind: models.SourceCamera, Device: dev})
		if err != nil {
			l.surface.ShowWarning(MsgCameraRead)
			return l.end(id, models.StateStoppedByFailure, frames, err)
		}

		result, err := l.processor.Process(ctx, frame, params)
		frame.Close()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return l.end(id, models.StateStoppedByFlag, frames, nil)
			}
			l.surface.ShowError(err)
			return l.end(id, models.StateStoppedByFailure, frames, err)
		}

		l.surface.ShowFrame(result.Processed, result.Histogram)
		l.sessions.FrameDone(id)
		frames++

		if l.opts.MaxFrames > 0 && frames >= l.opts.MaxFrames {
			return l.end(id, models.StateCompleted, frames, nil)
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return l.end(id, models.StateStoppedByFlag, frames, nil)
			case <-tick:
			}
		}
	}
}

// RunOnce performs exactly one acquire, process and show pass over sel.
func (l *Loop) RunOnce(ctx context.Context, sel models.Selection) Outcome {
	id := l.begin(models.SourceStatic)
	params := l.params.Snapshot()

	frame, err := l.source.Acquire(ctx, source.Request{Kind: models.SourceStatic, Selection: sel})
	if err != nil {
		if ctx.Err() != nil {
			return l.end(id, models.StateStoppedByFlag, 0, nil)
		}
		if errors.Is(err, source.ErrNoInput) {
			l.surface.ShowInfo(MsgNeedInput)
			return l.end(id, models.StateNoInput, 0, err)
		}
		l.surface.ShowError(err)
		return l.end(id, models.StateFailed, 0, err)
	}
	defer frame.Close()

	if ctx.Err() != nil {
		return l.end(id, models.StateStoppedByFlag, 0, nil)
	}

	result, err := l.processor.Process(ctx, frame, params)
	if err != nil {
		if ctx.Err() != nil {
			return l.end(id, models.StateStoppedByFlag, 0, nil)
		}
		l.surface.ShowError(err)
		return l.end(id, models.StateFailed, 0, err)
	}

	l.surface.ShowFrame(result.Processed, result.Histogram)
	l.sessions.FrameDone(id)
	return l.end(id, models.StateCompleted, 1, nil)
}

func (l *Loop) begin(kind models.SourceKind) string {
	id := uuid.NewString()
	l.sessions.Start(id, kind)
	l.log.Info(component, "session started", map[string]interface{}{
		"session_id": id,
		"source":     kind.String(),
	})
	return id
}

func (l *Loop) end(id string, state models.LoopState, frames int, err error) Outcome {
	l.sessions.Finish(id, state, err)

	fields := map[string]interface{}{
		"session_id": id,
		"state":      state.String(),
		"frames":     frames,
	}
	if kind, ok := source.Fault(err); ok {
		fields["fault"] = kind.String()
	}

	switch {
	case err != nil && state != models.StateNoInput:
		l.log.Error(component, err, fields)
	default:
		l.log.Info(component, "session ended", fields)
	}

	return Outcome{SessionID: id, State: state, Frames: frames, Err: err}
}

func (l *Loop) release(id string, dev source.Device) {
	if err := dev.Close(); err != nil {
		l.log.Warning(component, "device close failed", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
		return
	}
	l.log.Debug(component, "device released", map[string]interface{}{
		"session_id": id,
	})
}
