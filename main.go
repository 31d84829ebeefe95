package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	emubridge "github.com/user-none/mdcore/bridge/ebiten"
	"github.com/user-none/mdcore/cli"
	"github.com/user-none/mdcore/emu"
)

// parseRegion maps the -region flag to a timing region. "auto" reads
// the cartridge header.
func parseRegion(flagValue string, rom []byte) (emu.Region, error) {
	switch strings.ToLower(flagValue) {
	case "auto":
		return emu.DetectRegion(rom), nil
	case "ntsc":
		return emu.RegionNTSC, nil
	case "pal":
		return emu.RegionPAL, nil
	}
	return emu.RegionNTSC, fmt.Errorf("invalid region %q (use auto, ntsc, or pal)", flagValue)
}

// savePath is the battery save next to the ROM: game.md -> game.srm.
func savePath(romPath string) string {
	return strings.TrimSuffix(romPath, filepath.Ext(romPath)) + ".srm"
}

type options struct {
	rom       string
	region    string
	sixButton bool
	p2        bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet(emu.Name, flag.ContinueOnError)
	fs.StringVar(&o.rom, "rom", "", "path to ROM file (required)")
	fs.StringVar(&o.region, "region", "auto", "region: auto, ntsc, or pal")
	fs.BoolVar(&o.sixButton, "six-button", false, "use 6-button controllers")
	fs.BoolVar(&o.p2, "p2", true, "connect a second controller")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.rom == "" {
		return o, fmt.Errorf("ROM path is required. Usage: %s -rom <path>", emu.Name)
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	rom, err := os.ReadFile(opts.rom)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}
	region, err := parseRegion(opts.region, rom)
	if err != nil {
		log.Fatal(err)
	}

	e, err := emubridge.NewEmulator(rom, region)
	if err != nil {
		log.Fatalf("Failed to initialize emulator: %v", err)
	}
	defer e.Close()
	e.SetSixButton(opts.sixButton)
	e.SetP2Connected(opts.p2)

	h := e.Cartridge().Header
	log.Printf("%s %s: %q serial %q console %s", emu.Name, emu.Version, h.OverseasName, h.Serial, h.Console)

	srm := savePath(opts.rom)
	if e.HasSRAM() {
		if data, err := os.ReadFile(srm); err == nil {
			e.SetSRAM(data)
		}
		defer func() {
			if err := os.WriteFile(srm, e.GetSRAM(), 0644); err != nil {
				log.Printf("Failed to save SRAM: %v", err)
			}
		}()
	}

	ebiten.SetWindowSize(emu.ScreenWidth*2, emu.DefaultScreenHeight*2)
	ebiten.SetWindowTitle(emu.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(348, 348, -1, -1)

	runner := cli.NewRunner(e)
	defer runner.Close()

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}
