package memory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/procfs"
)

type Perm uint8

const (
	PermRead Perm = 1 << iota
	PermWrite
	PermExec
)

func (p Perm) String() string {
	out := []byte("---")
	if p&PermRead != 0 {
		out[0] = 'r'
	}
	if p&PermWrite != 0 {
		out[1] = 'w'
	}
	if p&PermExec != 0 {
		out[2] = 'x'
	}
	return string(out)
}

// Map is one entry of the process mapping table.
type Map struct {
	Start  uintptr
	End    uintptr
	Perm   Perm
	Offset uint64
	Path   string
}

func (m Map) Contains(address uintptr) bool {
	return address >= m.Start && address < m.End
}

func (m Map) Size() uintptr {
	return m.End - m.Start
}

// Range is a contiguous span of mapped memory.
type Range struct {
	Start uintptr
	End   uintptr
}

func (r Range) Contains(address uintptr) bool {
	return address >= r.Start && address < r.End
}

func (r Range) Size() uintptr {
	return r.End - r.Start
}

// Bytes aliases the whole range.
func (r Range) Bytes() []byte {
	return View(r.Start, int(r.Size()))
}

// Maps is sorted ascending by start address and holds only readable entries.
type Maps []Map

// CurrentMaps reads the mapping table of the calling process.
func CurrentMaps() (Maps, error) {
	p, err := procfs.Self()
	if err != nil {
		return nil, fmt.Errorf("open /proc/self: %w", err)
	}
	return procMaps(p)
}

// ReadMaps reads the mapping table of pid from a procfs mounted at root.
func ReadMaps(root string, pid int) (Maps, error) {
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, err
	}
	p, err := fs.Proc(pid)
	if err != nil {
		return nil, err
	}
	return procMaps(p)
}

func procMaps(p procfs.Proc) (Maps, error) {
	entries, err := p.ProcMaps()
	if err != nil {
		return nil, fmt.Errorf("read maps of %d: %w", p.PID, err)
	}
	maps := make(Maps, 0, len(entries))
	for _, e := range entries {
		m := Map{
			Start:  e.StartAddr,
			End:    e.EndAddr,
			Offset: uint64(e.Offset),
			Path:   e.Pathname,
		}
		if e.Perms != nil {
			if e.Perms.Read {
				m.Perm |= PermRead
			}
			if e.Perms.Write {
				m.Perm |= PermWrite
			}
			if e.Perms.Execute {
				m.Perm |= PermExec
			}
		}
		if m.Perm&PermRead == 0 {
			continue
		}
		maps = append(maps, m)
	}
	sort.Slice(maps, func(i, j int) bool { return maps[i].Start < maps[j].Start })
	return maps, nil
}

// Find returns the map containing address.
func (ms Maps) Find(address uintptr) (Map, bool) {
	idx := sort.Search(len(ms), func(i int) bool { return ms[i].End > address })
	if idx < len(ms) && ms[idx].Contains(address) {
		return ms[idx], true
	}
	return Map{}, false
}

// PermissionsOf returns the permissions of the map containing address, or
// none when the address is unmapped.
func (ms Maps) PermissionsOf(address uintptr) Perm {
	m, ok := ms.Find(address)
	if !ok {
		return 0
	}
	return m.Perm
}

// PermissionsOf queries the live mapping table. Enumeration failure reports
// no permissions.
func PermissionsOf(address uintptr) Perm {
	maps, err := CurrentMaps()
	if err != nil {
		return 0
	}
	return maps.PermissionsOf(address)
}

// ContiguousRanges coalesces adjacent executable maps into maximal ranges.
func (ms Maps) ContiguousRanges() []Range {
	var ranges []Range
	for _, m := range ms {
		if m.Perm&PermExec == 0 {
			continue
		}
		if n := len(ranges); n > 0 && ranges[n-1].End == m.Start {
			ranges[n-1].End = m.End
			continue
		}
		ranges = append(ranges, Range{Start: m.Start, End: m.End})
	}
	return ranges
}

// ExecutableRange returns the contiguous executable range holding address.
func (ms Maps) ExecutableRange(address uintptr) (Range, bool) {
	for _, r := range ms.ContiguousRanges() {
		if r.Contains(address) {
			return r, true
		}
	}
	return Range{}, false
}

// Module keeps the maps backed by a file whose path ends with name.
func (ms Maps) Module(name string) Maps {
	var out Maps
	for _, m := range ms {
		if m.Path != "" && strings.HasSuffix(m.Path, name) {
			out = append(out, m)
		}
	}
	return out
}
