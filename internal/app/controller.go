// Package app reacts to user intent by starting and stopping display loop
// runs.
package app

import (
	"context"
	"sync"
	"time"

	"histoview/internal/display"
	"histoview/internal/logger"
	"histoview/internal/models"
	"histoview/internal/source"
)

const component = "Controller"

// Runner executes display loop runs. *display.Loop satisfies it.
type Runner interface {
	RunContinuous(ctx context.Context, open source.Opener) display.Outcome
	RunOnce(ctx context.Context, sel models.Selection) display.Outcome
}

// View is the part of the presentation surface the controller drives.
type View interface {
	Selection() models.Selection
	SetRunning(running bool)
	SetStatus(status string)
	ClearFrame()
}

// Controller owns at most one loop run at a time. A new run waits for the
// previous one to finish, so a camera is always released before it is
// reopened. Handler methods never block.
type Controller struct {
	runner Runner
	view   View
	opener source.Opener
	log    logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

func NewController(runner Runner, view View, opener source.Opener, log logger.Logger) *Controller {
	return &Controller{
		runner: runner,
		view:   view,
		opener: opener,
		log:    log,
	}
}

// Start performs the initial run for the current selection, if any.
func (c *Controller) Start() {
	if c.view.Selection().Kind == models.SourceStatic {
		c.rerunStatic()
	}
}

func (c *Controller) SourceChanged(kind models.SourceKind) {
	c.log.Debug(component, "source changed", map[string]interface{}{
		"source": kind.String(),
	})

	c.stop()
	c.view.ClearFrame()
	if kind == models.SourceStatic {
		c.rerunStatic()
	}
}

func (c *Controller) RunChanged(running bool) {
	if !running || c.view.Selection().Kind != models.SourceCamera {
		c.stop()
		return
	}

	c.start(func(ctx context.Context) display.Outcome {
		return c.runner.RunContinuous(ctx, c.opener)
	})
}

// ParamsChanged reruns a static image. A camera run picks up new parameters
// on its next frame by itself.
func (c *Controller) ParamsChanged(p models.Params) {
	if c.view.Selection().Kind == models.SourceStatic {
		c.rerunStatic()
	}
}

func (c *Controller) InputChanged() {
	if c.view.Selection().Kind == models.SourceStatic {
		c.rerunStatic()
	}
}

func (c *Controller) rerunStatic() {
	c.start(func(ctx context.Context) display.Outcome {
		return c.runner.RunOnce(ctx, c.view.Selection())
	})
}

func (c *Controller) start(run func(ctx context.Context) display.Outcome) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	prevCancel, prevDone := c.cancel, c.done
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	c.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
	}

	go func() {
		defer close(done)
		defer cancel()

		if prevDone != nil {
			<-prevDone
		}
		if ctx.Err() != nil {
			return
		}

		c.finished(done, run(ctx))
	}()
}

func (c *Controller) finished(done chan struct{}, out display.Outcome) {
	c.mu.Lock()
	current := c.done == done
	c.mu.Unlock()

	if !current {
		return
	}

	switch out.State {
	case models.StateStoppedByFailure:
		c.view.SetRunning(false)
	case models.StateStoppedByFlag:
		if out.Frames > 0 {
			c.view.SetStatus("Webcam stopped.")
		}
	case models.StateCompleted:
		c.view.SetStatus("Ready")
	}
}

func (c *Controller) stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the current run, if any, has finished or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the current run, waits for it to release its device and
// refuses new runs.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Wait(ctx); err != nil {
		c.log.Warning(component, "run did not stop in time", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
