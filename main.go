// main.go - command-line entry point. Positional file arguments
// dispatch by extension (tap/tzx/sna/trd/scl); flags select the machine
// model, drive count, and ROM images.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var (
	flagReadOnly   bool
	flagDriveCount int
	flagTRDOSROM   string
	flag128K       bool
	flagROM        string
	flagROM1       string
	flagIssue2     bool
	flagMonitor    bool
	flagWatch      bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spectrum [files...]",
		Short: "Cycle-accurate ZX Spectrum 48K/128K emulator",
		Long: "spectrum emulates a ZX Spectrum 48K or 128K with Beta Disk\n" +
			"interface, AY sound, and a TAP/TZX pulse-accurate tape deck.\n" +
			"Files named on the command line mount by extension:\n" +
			"  .tap .tzx  tape    .sna  snapshot    .trd .scl  disk",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args)
		},
	}

	f := cmd.Flags()
	// Accept legacy underscore spellings (--drive_count) by normalizing
	// to the dashed canonical names.
	f.SetNormalizeFunc(func(fs *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	f.BoolVar(&flagReadOnly, "ro", false, "mount disk images read-only")
	f.IntVar(&flagDriveCount, "drive-count", 1, "Beta Disk drive count (1..4)")
	f.StringVar(&flagTRDOSROM, "trdos-rom", "", "TR-DOS ROM image for the Beta Disk interface")
	f.BoolVar(&flag128K, "128k", false, "emulate the 128K model")
	f.StringVar(&flagROM, "rom", "", "machine ROM image (48K ROM, or 128K ROM page 0)")
	f.StringVar(&flagROM1, "rom1", "", "128K ROM page 1 image")
	f.BoolVar(&flagIssue2, "issue2", false, "Issue-2 board EAR readback behavior")
	f.BoolVar(&flagMonitor, "monitor", false, "open the terminal debug monitor")
	f.BoolVar(&flagWatch, "watch", false, "hot-reload mounted media when files change on disk")
	return cmd
}

func buildConfig() Config {
	cfg := Config{
		Model:       Model48K,
		ROMPath:     flagROM,
		ROM1Path:    flagROM1,
		TRDOSROM:    flagTRDOSROM,
		DriveCount:  flagDriveCount,
		ReadOnly:    flagReadOnly,
		Issue2Board: flagIssue2,
	}
	if flag128K {
		cfg.Model = Model128K
	}
	if cfg.ROMPath == "" {
		if flag128K {
			cfg.ROMPath = "128-0.rom"
		} else {
			cfg.ROMPath = "48.rom"
		}
	}
	if flag128K && cfg.ROM1Path == "" {
		cfg.ROM1Path = "128-1.rom"
	}
	return cfg
}

func run(ctx context.Context, args []string) error {
	log := slog.Default()

	machine, err := NewMachine(buildConfig())
	if err != nil {
		return err
	}
	for _, path := range args {
		if err := machine.LoadFile(path); err != nil {
			return err
		}
		log.Info("loaded", "path", path)
	}

	ring := NewAudioRing(0.5)
	audio, err := NewOtoPlayer(mixerSampleRate)
	if err != nil {
		return err
	}
	audio.SetupPlayer(ring)
	audio.Start()
	defer audio.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	var events <-chan string
	if flagWatch {
		var paths []string
		if machine.tapePath != "" {
			paths = append(paths, machine.tapePath)
		}
		for _, p := range machine.drivePaths {
			if p != "" {
				paths = append(paths, p)
			}
		}
		watcher, err := NewMediaWatcher(paths, log)
		if err != nil {
			return err
		}
		events = watcher.Changed()
		g.Go(func() error { return watcher.Run(ctx) })
	}

	var snapshots chan MonitorSnapshot
	if flagMonitor {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("--monitor needs an interactive terminal")
		}
		snapshots = make(chan MonitorSnapshot, 1)
		g.Go(func() error {
			defer cancel()
			return RunMonitor(snapshots)
		})
	}

	hotkeys := NewHotkeyRouter(machine, log, cancel)
	frontend := NewEbitenFrontend(machine, hotkeys, ring, events, snapshots)
	g.Go(func() error {
		defer cancel()
		return frontend.Run(ctx)
	})

	return g.Wait()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "spectrum:", err)
		os.Exit(1)
	}
}
