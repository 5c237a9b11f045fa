package diag

import "fmt"

// Severity orders diagnostics inside a file; reporters do not print it.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	// SevError is used for surface diagnostics and parse-level rule findings.
	SevError
)

var severityNames = [...]string{SevInfo: "info", SevWarning: "warning", SevError: "error"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("severity(%d)", uint8(s))
}

// MarshalText lets loggers and encoders print the name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
