package emu

// Name is the core name reported to frontends.
const Name = "mdcore"

// Version is set at build time with -ldflags "-X .../emu.Version=...".
var Version = "dev"
