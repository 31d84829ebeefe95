package emu

import "fmt"

// DefectError reports a violated internal invariant. It is raised with
// panic at the point of detection and recovered by Emulator.StepFrame,
// which returns it as an ordinary error. Emulated faults (address errors,
// illegal opcodes, unmapped reads) never produce one.
type DefectError struct {
	Component string
	Detail    string
}

func (e *DefectError) Error() string {
	return fmt.Sprintf("%s: internal defect: %s", e.Component, e.Detail)
}

// defect panics with a DefectError for the named component.
func defect(component, format string, args ...any) {
	panic(&DefectError{Component: component, Detail: fmt.Sprintf(format, args...)})
}
