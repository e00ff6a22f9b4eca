package renderer

import (
	"log"

	"github.com/loov/hrtime"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"

	"vulkan_mesh_demo/frame"
)

// translateEvent maps an SDL event onto the frame loop's events. ok is false for events the loop does not care about.
func translateEvent(event sdl.Event) (ev frame.Event, ok bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return frame.CloseRequested, true
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			return frame.Resized, true
		case sdl.WINDOWEVENT_CLOSE:
			return frame.CloseRequested, true
		}
	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE {
			return frame.KeyEscape, true
		}
	}
	return 0, false
}

// Run is the event-loop for user interaction. It drains pending SDL events, then redraws once per iteration.
// While the window is minimized it sleeps in sdl.WaitEvent instead of rendering. Returns on exit request or on
// the first fatal frame error.
func (c *Core) Run() error {
	t0 := hrtime.Now()
	frames := 0
	defer func() {
		dt := hrtime.Since(t0)
		log.Printf("Elapsed: %v, rough avg fps: %.1f fps", dt, float64(frames)/dt.Seconds())
	}()

	for !c.loop.Exit() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if err := c.dispatch(event); err != nil {
				return err
			}
		}
		if c.loop.Exit() {
			break
		}
		if c.Win.Minimized() {
			// Sleep until new events arrive, a restore is followed by a resize
			if err := c.dispatch(sdl.WaitEvent()); err != nil {
				return err
			}
			continue
		}
		if err := c.loop.Handle(frame.Redraw); err != nil {
			return errors.Wrapf(err, "frame %d", frames)
		}
		frames++
	}
	return nil
}

func (c *Core) dispatch(event sdl.Event) error {
	if event == nil {
		return nil
	}
	ev, ok := translateEvent(event)
	if !ok {
		return nil
	}
	return c.loop.Handle(ev)
}
