// Package adapter exposes the core to the eblitui frontends.
package adapter

import (
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/mdcore/emu"
)

var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory.
type Factory struct{}

// SystemInfo describes the console to the frontend.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            emu.Name,
		ConsoleName:     "Sega Genesis",
		Extensions:      []string{".md", ".bin", ".gen"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.MaxScreenHeight,
		AspectRatio:     320.0 / 224.0,
		SampleRate:      emu.SampleRate,
		Buttons: []emucore.Button{
			{Name: "A", ID: emu.ButtonA, DefaultKey: "J", DefaultPad: "X"},
			{Name: "B", ID: emu.ButtonB, DefaultKey: "K", DefaultPad: "A"},
			{Name: "C", ID: emu.ButtonC, DefaultKey: "L", DefaultPad: "B"},
			{Name: "X", ID: emu.ButtonX, DefaultKey: "U", DefaultPad: "L1"},
			{Name: "Y", ID: emu.ButtonY, DefaultKey: "I", DefaultPad: "Y"},
			{Name: "Z", ID: emu.ButtonZ, DefaultKey: "O", DefaultPad: "R1"},
			{Name: "Mode", ID: emu.ButtonMode, DefaultKey: "P", DefaultPad: "Select"},
			{Name: "Start", ID: emu.ButtonStart, DefaultKey: "Enter", DefaultPad: "Start"},
		},
		Players: 2,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         "six_button",
				Label:       "6-Button Controller",
				Description: "Report 6-button pads instead of 3-button pads",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
				Category:    emucore.CoreOptionCategoryInput,
			},
		},
		RDBName:       "Sega - Mega Drive - Genesis",
		ThumbnailRepo: "Sega_-_Mega_Drive_-_Genesis",
		DataDirName:   emu.Name,
		ConsoleID:     1,
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
	}
}

// CreateEmulator loads rom. Cartridge errors are returned unchanged.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	e, err := emu.NewEmulator(rom, region)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DetectRegion reads the region from the cartridge header. The bool is
// false because no ROM database is consulted.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return emu.DetectRegion(rom), false
}
