package checklist

import "strings"

// Verdict is the tri-state outcome recorded for every checklist item.
type Verdict string

const (
	VerdictValid         Verdict = "V"
	VerdictNotApplicable Verdict = "NA"
	VerdictInvalid       Verdict = "X"
)

func (v Verdict) Valid() bool {
	switch v {
	case VerdictValid, VerdictNotApplicable, VerdictInvalid:
		return true
	default:
		return false
	}
}

// ParseVerdict accepts the stored codes case-insensitively.
func ParseVerdict(raw string) (Verdict, bool) {
	v := Verdict(strings.ToUpper(strings.TrimSpace(raw)))
	if !v.Valid() {
		return "", false
	}
	return v, true
}

func (v Verdict) Label() string {
	switch v {
	case VerdictValid:
		return "Valid"
	case VerdictNotApplicable:
		return "Not applicable"
	case VerdictInvalid:
		return "Invalid"
	default:
		return string(v)
	}
}
