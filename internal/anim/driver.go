// Package anim drives repeated render passes from a display refresh signal.
package anim

// FrameID identifies a pending frame request. Zero is never issued.
type FrameID uint64

// Scheduler delivers a callback on the next display refresh.
type Scheduler interface {
	RequestFrame(fn func()) FrameID
	// CancelFrame drops a pending request. Cancelling a request that already
	// fired, or an unknown id, has no effect.
	CancelFrame(id FrameID)
}

// Driver runs one pass per refresh while running. It is not safe for
// concurrent use; call it from the event loop that also runs the
// scheduler's callbacks.
type Driver struct {
	sched   Scheduler
	pass    func()
	running bool
	pending FrameID
	// gen changes on every Stop so refreshes requested before it are
	// ignored even if they were already handed to the loop.
	gen uint64
}

func NewDriver(sched Scheduler, pass func()) *Driver {
	return &Driver{sched: sched, pass: pass}
}

func (d *Driver) Running() bool { return d.running }

// Start runs a pass immediately and schedules the next one. It is a no-op
// while already running.
func (d *Driver) Start() {
	if d.running {
		return
	}
	d.running = true
	d.step()
}

// Stop cancels the pending refresh without running a pass. It is a no-op
// while idle.
func (d *Driver) Stop() {
	if !d.running {
		return
	}
	d.running = false
	d.gen++
	if d.pending != 0 {
		d.sched.CancelFrame(d.pending)
		d.pending = 0
	}
}

// SetRunning starts or stops the driver.
func (d *Driver) SetRunning(running bool) {
	if running {
		d.Start()
	} else {
		d.Stop()
	}
}

func (d *Driver) step() {
	d.pass()
	// pass may have stopped us.
	if !d.running {
		return
	}
	gen := d.gen
	d.pending = d.sched.RequestFrame(func() { d.onFrame(gen) })
}

func (d *Driver) onFrame(gen uint64) {
	if gen != d.gen || !d.running {
		return
	}
	d.pending = 0
	d.step()
}
