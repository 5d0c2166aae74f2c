package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/bootstrap"
	"github.com/mizz1e/snowdrop-sub000/packages/launch"
)

// gameExit carries LauncherMain's return value out of cobra.
var gameExit int32

func addLaunchFlags(flags *pflag.FlagSet, o *launch.Options) {
	flags.StringVar(&o.Address, "address", "", "Server to connect to (host:port)")
	flags.StringVar(&o.Map, "map", "", "Map to load on start")
	flags.Uint16Var(&o.MaxFPS, "max-fps", 0, "Frame rate cap, 0 leaves the game default")
	flags.BoolVar(&o.NoVAC, "no-vac", false, "Do not pass -steam to the game")
	flags.BoolVar(&o.Vulkan, "vulkan", false, "Use the Vulkan renderer")
	flags.BoolVar(&o.Windowed, "windowed", false, "Run windowed")
	flags.BoolVar(&o.Fullscreen, "fullscreen", false, "Run fullscreen")
}

func newCmdRoot() *cobra.Command {
	opts := bootstrap.DefaultOptions()
	opts.InvokeLauncher = true
	var gameDir string

	cmd := &cobra.Command{
		Use:           "elysium",
		Short:         "Run the game with elysium loaded",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Launch.Validate(); err != nil {
				return err
			}
			if gameDir != "" {
				if err := os.Chdir(gameDir); err != nil {
					return fmt.Errorf("game directory: %w", err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := bootstrap.Run(opts)
			if err != nil {
				return err
			}
			gameExit = code
			return nil
		},
	}
	addLaunchFlags(cmd.Flags(), &opts.Launch)
	cmd.Flags().StringVar(&gameDir, "game-dir", "", "Game installation directory, defaults to the working directory")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Configuration file, defaults to the user config directory")

	cmd.AddCommand(newCmdConfig())
	return cmd
}
