package bootstrap

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/frame"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/hook"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/library"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/netvar"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/state"
)

// Summary is what initialization resolved, for the startup report.
type Summary struct {
	Pid        int32
	Program    string
	RSS        uint64
	Modules    []*library.Library
	Interfaces []NamedAddress
	Properties []netvar.Property
	Hooks      []hook.Hook
	Schedules  []ScheduleInfo
}

type NamedAddress struct {
	Name    string
	Address uintptr
}

type ScheduleInfo struct {
	Name string
	Jobs []string
}

func collectSummary(reg *library.Registry, ifaces state.Interfaces, props *netvar.Offsets, hooks *hook.Set, d *frame.Dispatcher) Summary {
	s := Summary{
		Pid:        int32(os.Getpid()),
		Modules:    reg.Libraries(),
		Interfaces: namedInterfaces(ifaces),
		Properties: props.Properties(),
		Hooks:      hooks.Hooks(),
	}
	if p, err := process.NewProcess(s.Pid); err == nil {
		s.Program, _ = p.Name()
		if mem, err := p.MemoryInfo(); err == nil {
			s.RSS = mem.RSS
		}
	}
	for _, schedule := range d.Schedules() {
		s.Schedules = append(s.Schedules, ScheduleInfo{Name: schedule.Name, Jobs: schedule.Jobs()})
	}
	return s
}

func namedInterfaces(in state.Interfaces) []NamedAddress {
	return []NamedAddress{
		{"client", in.Client},
		{"engine", in.Engine},
		{"entity_list", in.EntityList},
		{"input_system", in.Input},
		{"physics", in.Physics},
		{"material_system", in.MaterialSystem},
		{"cvar", in.Cvar},
		{"surface", in.Surface},
		{"model_render", in.ModelRender},
		{"spatial_query", in.SpatialQuery},
		{"client_mode (global)", in.ClientModeSlot},
		{"global_vars (global)", in.GlobalVarsSlot},
		{"input (global)", in.InputSlot},
	}
}

func hex(v uintptr) string {
	return fmt.Sprintf("0x%x", v)
}

func writeSummary(w io.Writer, s Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Process")
	t.AppendHeader(table.Row{"PID", "Program", "RSS (MiB)"})
	t.AppendRow(table.Row{s.Pid, s.Program, s.RSS >> 20})
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Modules")
	t.AppendHeader(table.Row{"#", "Name", "Path"})
	for i, lib := range s.Modules {
		t.AppendRow(table.Row{i + 1, lib.Name, lib.Path})
	}
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Interfaces")
	t.AppendHeader(table.Row{"Name", "Address"})
	for _, in := range s.Interfaces {
		t.AppendRow(table.Row{in.Name, hex(in.Address)})
	}
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Properties")
	t.AppendHeader(table.Row{"Name", "Path", "Type", "Offset"})
	for _, p := range s.Properties {
		t.AppendRow(table.Row{p.Name, p.Path, p.Type, hex(p.Offset)})
	}
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Hooks")
	t.AppendHeader(table.Row{"ID", "Kind", "Requester", "Address", "Original"})
	for _, h := range s.Hooks {
		t.AppendRow(table.Row{h.ID, h.Kind, h.Requester, hex(h.Address), hex(h.Original)})
	}
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Schedules")
	t.AppendHeader(table.Row{"Schedule", "#", "Job"})
	for _, schedule := range s.Schedules {
		for i, job := range schedule.Jobs {
			t.AppendRow(table.Row{schedule.Name, i + 1, job})
		}
	}
	t.Render()
}
