package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/mdcore/adapter"
	"github.com/user-none/mdcore/emu"
)

func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadY, BitID: emu.ButtonA},
		{RetroID: libretro.JoypadB, BitID: emu.ButtonB},
		{RetroID: libretro.JoypadA, BitID: emu.ButtonC},
		{RetroID: libretro.JoypadStart, BitID: emu.ButtonStart},
		{RetroID: libretro.JoypadX, BitID: emu.ButtonX},
		{RetroID: libretro.JoypadL, BitID: emu.ButtonY},
		{RetroID: libretro.JoypadR, BitID: emu.ButtonZ},
		{RetroID: libretro.JoypadSelect, BitID: emu.ButtonMode},
	})
}

func main() {}
