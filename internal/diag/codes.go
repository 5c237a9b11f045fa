package diag

// Code is the stable identifier of a rule. It is part of the machine-readable
// output and of the incremental cache fingerprint, so values must not change.
type Code string

// SurfaceCode is the synthetic code carried by every workspace export-surface
// diagnostic.
const SurfaceCode Code = "explicit-surface"

func (c Code) String() string {
	return string(c)
}
