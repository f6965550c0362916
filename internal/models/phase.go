package models

import (
	"fmt"
	"time"
)

// Phase is a period of the 2020 COVID-19 lockdown timeline.
type Phase int

const (
	PreLockdown Phase = iota + 1
	Lockdown
	PostLockdown
)

type phaseInfo struct {
	name       string
	start, end Date
}

var phaseTable = map[Phase]phaseInfo{
	PreLockdown:  {name: "Pre-Lockdown", start: NewDate(2020, time.January, 1), end: NewDate(2020, time.February, 29)},
	Lockdown:     {name: "Lockdown", start: NewDate(2020, time.March, 1), end: NewDate(2020, time.May, 31)},
	PostLockdown: {name: "Post-Lockdown", start: NewDate(2020, time.June, 1), end: NewDate(2020, time.December, 31)},
}

func AllPhases() []Phase {
	return []Phase{PreLockdown, Lockdown, PostLockdown}
}

func (p Phase) String() string {
	if info, ok := phaseTable[p]; ok {
		return info.name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Range returns the inclusive date range of the phase.
func (p Phase) Range() (Date, Date) {
	info := phaseTable[p]
	return info.start, info.end
}

func (p Phase) MarshalText() ([]byte, error) {
	if _, ok := phaseTable[p]; !ok {
		return nil, fmt.Errorf("invalid phase %d", int(p))
	}
	return []byte(p.String()), nil
}

func ParsePhase(s string) (Phase, error) {
	for p, info := range phaseTable {
		if s == info.name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
