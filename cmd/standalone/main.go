//go:build !libretro && !ios

package main

import (
	"flag"
	"log"
	"strconv"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/mdcore/adapter"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file (opens UI if not provided)")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	sixButton := flag.Bool("six-button", false, "use 6-button controllers")
	flag.Parse()

	factory := &adapter.Factory{}
	if *romPath == "" {
		if err := standalone.Run(factory); err != nil {
			log.Fatal(err)
		}
		return
	}

	options := map[string]string{
		"six_button": strconv.FormatBool(*sixButton),
	}
	if err := standalone.RunDirect(factory, *romPath, *regionFlag, options); err != nil {
		log.Fatal(err)
	}
}
