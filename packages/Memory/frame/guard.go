package frame

import (
	"runtime/debug"
	"sync"
)

var (
	faultsMu sync.Mutex
	faults   = make(map[string]int)
)

// guard runs one feature of an interceptor. A panic, including a fault on a
// bad game pointer, is logged and swallowed so the interceptor still chains
// to the game with its original arguments.
func guard(feature string, f func()) {
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if r := recover(); r != nil {
			n := recordFault(feature)
			// First failure, then every 1000th.
			if n%1000 == 1 {
				log.WithField("feature", feature).
					WithField("failures", n).
					Errorf("Feature panicked: %v", r)
			}
		}
	}()
	f()
}

func recordFault(feature string) int {
	faultsMu.Lock()
	defer faultsMu.Unlock()
	faults[feature]++
	return faults[feature]
}

// Faults returns how many times a feature has panicked.
func Faults(feature string) int {
	faultsMu.Lock()
	defer faultsMu.Unlock()
	return faults[feature]
}
