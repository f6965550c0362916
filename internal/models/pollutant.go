package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPollutant = errors.New("unknown pollutant")

type Pollutant int

const (
	PM25 Pollutant = iota + 1
	SO2
	NO2
)

type pollutantInfo struct {
	id          string
	label       string
	unit        string
	description string
}

var pollutantTable = map[Pollutant]pollutantInfo{
	PM25: {
		id:    "pm25",
		label: "PM2.5",
		unit:  "µg/m³",
		description: "Particulate matter less than 2.5 micrometers in diameter (PM2.5) are fine inhalable particles, " +
			"with diameters that are generally 2.5 micrometers and smaller. They originate from a variety of sources, " +
			"including power plants, motor vehicles, airplane emissions, residential wood burning, and certain " +
			"industrial processes. PM2.5 can penetrate deeply into the respiratory system, posing significant health risks.",
	},
	SO2: {
		id:    "so2",
		label: "SO2",
		unit:  "ppm",
		description: "Sulfur dioxide (SO2) is a gas produced by volcanic eruptions and in various industrial processes. " +
			"Coal and petroleum often contain sulfur compounds, and their combustion generates sulfur dioxide.",
	},
	NO2: {
		id:    "no2",
		label: "NO2",
		unit:  "ppm",
		description: "Nitrogen dioxide (NO2) is one of a group of highly reactive gasses known as \"oxides of nitrogen,\" " +
			"or \"nitrogen oxides (NOx).\" Other nitrogen oxides include nitrous acid and nitric acid. NO2 forms from " +
			"emissions from cars, trucks and buses, power plants, and off-road equipment.",
	},
}

func AllPollutants() []Pollutant {
	return []Pollutant{PM25, SO2, NO2}
}

func (p Pollutant) Valid() bool {
	_, ok := pollutantTable[p]
	return ok
}

func (p Pollutant) String() string {
	if info, ok := pollutantTable[p]; ok {
		return info.id
	}
	return fmt.Sprintf("Pollutant(%d)", int(p))
}

func (p Pollutant) Label() string       { return pollutantTable[p].label }
func (p Pollutant) Unit() string        { return pollutantTable[p].unit }
func (p Pollutant) Description() string { return pollutantTable[p].description }

func ParsePollutant(s string) (Pollutant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, info := range pollutantTable {
		if s == info.id {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownPollutant, s)
}

func (p Pollutant) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid pollutant %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Pollutant) UnmarshalText(text []byte) error {
	parsed, err := ParsePollutant(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
