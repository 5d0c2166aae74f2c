package launch

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// Program is argv[0] handed to the game.
const Program = "csgo_linux64"

var ErrConflictingDisplay = errors.New("--windowed and --fullscreen are mutually exclusive")

// Options are the wrapper's command-line settings.
type Options struct {
	Address    string
	Map        string
	MaxFPS     uint16
	NoVAC      bool
	Vulkan     bool
	Windowed   bool
	Fullscreen bool
}

func (o Options) Validate() error {
	if o.Windowed && o.Fullscreen {
		return ErrConflictingDisplay
	}
	if o.Address != "" {
		if _, _, err := net.SplitHostPort(o.Address); err != nil {
			return fmt.Errorf("invalid address %q: %w", o.Address, err)
		}
	}
	return nil
}

// Args builds the argument vector for LauncherMain.
func (o Options) Args() []string {
	args := []string{Program}
	if !o.NoVAC {
		args = append(args, "-steam")
	}
	if o.Vulkan {
		args = append(args, "-vulkan")
	}
	if o.Windowed {
		args = append(args, "-windowed")
	}
	if o.Fullscreen {
		args = append(args, "-fullscreen")
	}
	if o.Address != "" {
		args = append(args, "+connect", o.Address)
	}
	if o.Map != "" {
		args = append(args, "+map", o.Map)
	}
	if o.MaxFPS != 0 {
		args = append(args, "+fps_max", strconv.FormatUint(uint64(o.MaxFPS), 10))
	}
	return args
}
