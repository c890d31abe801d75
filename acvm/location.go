package acvm

import "fmt"

// OpcodeLocation identifies either a top-level ACIR opcode, or a specific
// instruction inside the Brillig program a BrilligCall opcode invoked.
type OpcodeLocation struct {
	AcirIndex    uint32
	BrilligIndex *uint32 // non-nil selects a sub-index inside a BrilligCall
}

// AcirLocation builds a plain ACIR-level location.
func AcirLocation(index uint32) OpcodeLocation {
	return OpcodeLocation{AcirIndex: index}
}

// BrilligLocation builds a location inside a Brillig call's sub-program.
func BrilligLocation(acirIndex, brilligIndex uint32) OpcodeLocation {
	return OpcodeLocation{AcirIndex: acirIndex, BrilligIndex: &brilligIndex}
}

func (l OpcodeLocation) String() string {
	if l.BrilligIndex == nil {
		return fmt.Sprintf("acir(%d)", l.AcirIndex)
	}
	return fmt.Sprintf("acir(%d).brillig(%d)", l.AcirIndex, *l.BrilligIndex)
}

// Equal reports whether two locations identify the same opcode.
func (l OpcodeLocation) Equal(other OpcodeLocation) bool {
	if l.AcirIndex != other.AcirIndex {
		return false
	}
	if (l.BrilligIndex == nil) != (other.BrilligIndex == nil) {
		return false
	}
	if l.BrilligIndex == nil {
		return true
	}
	return *l.BrilligIndex == *other.BrilligIndex
}

// ErrorLocation is either Unresolved (the solver hasn't yet attributed the
// error to a specific opcode index) or Resolved to a concrete
// OpcodeLocation. The dispatcher upgrades unresolved locations to resolved
// ones before surfacing errors to the host (spec.md §4.5).
type ErrorLocation struct {
	resolved bool
	location OpcodeLocation
}

// UnresolvedLocation returns the unresolved sentinel.
func UnresolvedLocation() ErrorLocation { return ErrorLocation{} }

// ResolvedLocation wraps a concrete opcode location.
func ResolvedLocation(loc OpcodeLocation) ErrorLocation {
	return ErrorLocation{resolved: true, location: loc}
}

// IsResolved reports whether the location has been attributed to an opcode.
func (l ErrorLocation) IsResolved() bool { return l.resolved }

// Location returns the resolved opcode location. Callers must check
// IsResolved first; calling this on an unresolved location panics, since it
// indicates a bug in the dispatcher's error-localisation logic rather than
// a condition hosts need to recover from.
func (l ErrorLocation) Location() OpcodeLocation {
	if !l.resolved {
		panic("acvm: Location() called on an unresolved ErrorLocation")
	}
	return l.location
}

func (l ErrorLocation) String() string {
	if !l.resolved {
		return "unresolved"
	}
	return l.location.String()
}
