package memory

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Pattern is a byte signature where masked-out positions match anything.
type Pattern struct {
	Bytes []byte
	Mask  []bool
}

func (p Pattern) Len() int {
	return len(p.Bytes)
}

func (p Pattern) String() string {
	parts := make([]string, len(p.Bytes))
	for i, b := range p.Bytes {
		if !p.Mask[i] {
			parts[i] = "??"
			continue
		}
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

func isSpaceSeparatedHex(s string) bool {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return false
	}
	for _, part := range parts {
		if part == "?" || part == "??" {
			continue
		}
		if len(part) != 2 {
			return false
		}
		if _, err := hex.DecodeString(part); err != nil {
			return false
		}
	}
	return true
}

// ParsePattern accepts "48 8B ?? 05" style signatures. Anything that is not a
// space separated hex signature is matched as literal bytes.
func ParsePattern(aob string) (Pattern, error) {
	if !isSpaceSeparatedHex(aob) {
		if aob == "" {
			return Pattern{}, fmt.Errorf("empty pattern")
		}
		p := Pattern{Bytes: []byte(aob), Mask: make([]bool, len(aob))}
		for i := range p.Mask {
			p.Mask[i] = true
		}
		return p, nil
	}

	var p Pattern
	for _, part := range strings.Fields(aob) {
		if strings.Contains(part, "?") {
			p.Bytes = append(p.Bytes, 0)
			p.Mask = append(p.Mask, false)
			continue
		}
		b, err := hex.DecodeString(part)
		if err != nil {
			return Pattern{}, fmt.Errorf("pattern byte %q: %w", part, err)
		}
		p.Bytes = append(p.Bytes, b[0])
		p.Mask = append(p.Mask, true)
	}
	return p, nil
}

func MustParsePattern(aob string) Pattern {
	p, err := ParsePattern(aob)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pattern) matchAt(data []byte, i int) bool {
	for j := range p.Bytes {
		if p.Mask[j] && p.Bytes[j] != data[i+j] {
			return false
		}
	}
	return true
}

// FindPattern returns the index of the first match in data, or -1.
func FindPattern(data []byte, p Pattern) int {
	for i := 0; i <= len(data)-p.Len(); i++ {
		if p.matchAt(data, i) {
			return i
		}
	}
	return -1
}

// FindAllPatterns returns every match offset in data.
func FindAllPatterns(data []byte, p Pattern) []int {
	var results []int
	for i := 0; i <= len(data)-p.Len(); i++ {
		if p.matchAt(data, i) {
			results = append(results, i)
		}
	}
	return results
}

// ScanRanges searches every range concurrently and returns the absolute
// addresses of all matches, sorted ascending. stopAt limits the number of
// results when positive.
func ScanRanges(ranges []Range, p Pattern, stopAt int) []uintptr {
	if len(ranges) == 0 || p.Len() == 0 {
		return nil
	}

	resultsCh := make(chan []uintptr, len(ranges))
	var wg sync.WaitGroup
	wg.Add(len(ranges))

	for _, r := range ranges {
		go func(r Range) {
			defer wg.Done()
			var local []uintptr
			for _, off := range FindAllPatterns(r.Bytes(), p) {
				local = append(local, r.Start+uintptr(off))
			}
			resultsCh <- local
		}(r)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var results []uintptr
	for res := range resultsCh {
		results = append(results, res...)
	}
	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	if stopAt > 0 && len(results) > stopAt {
		results = results[:stopAt]
	}
	return results
}

// ScanModule searches the executable ranges of the module whose path ends
// with name.
func ScanModule(maps Maps, name string, p Pattern) ([]uintptr, error) {
	module := maps.Module(name)
	if len(module) == 0 {
		return nil, fmt.Errorf("module %s is not mapped", name)
	}
	ranges := module.ContiguousRanges()
	if len(ranges) == 0 {
		return nil, fmt.Errorf("module %s has no executable pages", name)
	}
	return ScanRanges(ranges, p, 0), nil
}
