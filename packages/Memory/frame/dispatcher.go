package frame

import (
	"sync/atomic"
	"unsafe"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/abi"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/entity"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging/logfields"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/sdl"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/state"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "frame")

// Deferred runs on every frame-stage callback until it reports done or
// fails. It installs hooks whose targets only exist once the game has
// initialized itself.
type Deferred func() (done bool, err error)

// CommandJob runs inside create-move before the configured transforms.
type CommandJob func(cmd *entity.UserCommand, sendPacket bool)

// Dispatcher owns the per-frame schedules and implements the interceptors.
type Dispatcher struct {
	natives  Natives
	latch    *sdl.Latch
	swap     *Schedule
	stages   map[Stage]*Schedule
	commands []namedCommandJob
	deferred Deferred

	// Whether the last OverrideView turned thirdperson on.
	thirdPerson bool
}

type namedCommandJob struct {
	name string
	run  CommandJob
}

// New returns a dispatcher with the built-in jobs registered.
func New(natives Natives) *Dispatcher {
	d := &Dispatcher{
		natives: natives,
		latch:   sdl.NewLatch(natives.WindowTitle),
		swap:    NewSchedule("swap_window"),
		stages:  make(map[Stage]*Schedule),
	}
	for _, stage := range Stages() {
		d.stages[stage] = NewSchedule(stage.String())
	}
	d.registerBuiltins()
	return d
}

func (d *Dispatcher) registerBuiltins() {
	must(d.swap.Add("overlay", renderOverlay))
	must(d.Stage(StageNetUpdatePostDataEnd).Add("fog", applyFog))
	must(d.Stage(StageNetUpdatePostDataEnd).Add("tonemap", applyTonemap))
	must(d.Stage(StageRenderStart).Add("thirdperson_angles", applyThirdPersonAngles))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Stage returns the schedule run at stage.
func (d *Dispatcher) Stage(stage Stage) *Schedule {
	s, ok := d.stages[stage]
	if !ok {
		s = NewSchedule(stage.String())
		d.stages[stage] = s
	}
	return s
}

// Swap returns the schedule run on every ready buffer swap.
func (d *Dispatcher) Swap() *Schedule {
	return d.swap
}

// Schedules lists the swap schedule followed by the stage schedules in
// frame order.
func (d *Dispatcher) Schedules() []*Schedule {
	out := []*Schedule{d.swap}
	for _, stage := range Stages() {
		out = append(out, d.stages[stage])
	}
	return out
}

// AddCommandJob registers a create-move extension.
func (d *Dispatcher) AddCommandJob(name string, job CommandJob) {
	d.commands = append(d.commands, namedCommandJob{name: name, run: job})
}

// Defer sets the deferred installer.
func (d *Dispatcher) Defer(f Deferred) {
	d.deferred = f
}

// Handlers adapts the dispatcher to the C replacement functions.
func (d *Dispatcher) Handlers() *abi.Handlers {
	return &abi.Handlers{
		SwapWindow:       d.SwapWindow,
		PollEvent:        d.PollEvent,
		FrameStageNotify: d.frameStageNotify,
		CreateMove:       d.CreateMove,
		OverrideView:     d.OverrideView,
		DrawModel:        d.DrawModel,
		ListLeavesInBox:  d.ListLeavesInBox,
		GameLog:          GameLog,
	}
}

func (d *Dispatcher) frameStageNotify(self uintptr, stage int32) {
	d.FrameStageNotify(self, Stage(stage))
}

// SwapWindow runs the overlay once the window is ready and always chains.
func (d *Dispatcher) SwapWindow(window uintptr) {
	guard("overlay", func() {
		if d.latch.Ready(window) {
			d.swap.Run()
		}
	})
	d.natives.SwapWindow(window)
}

func renderOverlay() {
	state.WithMut(func(s *state.State) {
		if s.Program != nil {
			s.Program.Render()
		}
	})
}

// PollEvent forwards input events to the overlay. The game sees every
// event and the original return value.
func (d *Dispatcher) PollEvent(event uintptr) int32 {
	n := d.natives.PollEvent(event)
	if n == 0 {
		return n
	}
	guard("overlay_input", func() {
		ev, ok := sdl.DecodeAt(event)
		if !ok {
			return
		}
		state.WithMut(func(s *state.State) {
			if s.Program != nil {
				s.Program.Handle(ev)
			}
		})
	})
	return n
}

// FrameStageNotify runs the stage's schedule, then chains.
func (d *Dispatcher) FrameStageNotify(self uintptr, stage Stage) {
	guard("deferred_hooks", d.runDeferred)
	if s, ok := d.stages[stage]; ok {
		s.Run()
	}
	d.natives.FrameStageNotify(self, stage)
}

func (d *Dispatcher) runDeferred() {
	if d.deferred == nil {
		return
	}
	done, err := d.deferred()
	if err != nil {
		log.WithError(err).Error("Deferred hook installation failed")
		d.deferred = nil
		return
	}
	if done {
		log.Info("Deferred hooks installed")
		d.deferred = nil
	}
}

var command atomic.Pointer[entity.UserCommand]

// CurrentUserCommand returns the outgoing command while create-move runs,
// nil otherwise.
func CurrentUserCommand() *entity.UserCommand {
	return command.Load()
}

func commandAt(address uintptr) *entity.UserCommand {
	return (*entity.UserCommand)(unsafe.Pointer(address))
}
