package tableschema

// Mode selects how validation failures are reported.
type Mode int

const (
	// Strict returns the first violation as an error.
	Strict Mode = iota
	// Lenient appends violations to the entity's error list and returns nil.
	// The list is cumulative until ResetErrors is called.
	Lenient
)

func (m Mode) String() string {
	if m == Lenient {
		return "lenient"
	}
	return "strict"
}

// report applies the mode to a batch of violations found by one validation
// pass: strict returns the first, lenient appends them all to log.
func (m Mode) report(log *Issues, found Issues) error {
	if len(found) == 0 {
		return nil
	}
	if m == Strict {
		return Issues{found[0]}
	}
	*log = AppendIssues(*log, found...)
	return nil
}
