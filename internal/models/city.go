package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCity = errors.New("unknown city")

type City int

const (
	Chicago City = iota + 1
	Seattle
	NewYork
	Miami
	LosAngeles
)

// County identifies a region in the mobility report: sub_region_1 is the
// state, sub_region_2 the county.
type County struct {
	State  string `json:"state"`
	County string `json:"county"`
}

type cityInfo struct {
	id          string
	displayName string
	metroName   string
	county      County
}

var cityTable = map[City]cityInfo{
	Chicago: {
		id:          "chicago",
		displayName: "Chicago",
		metroName:   "Chicago-Naperville-Joliet",
		county:      County{State: "Illinois", County: "Cook County"},
	},
	Seattle: {
		id:          "seattle",
		displayName: "Seattle",
		metroName:   "Seattle-Tacoma-Bellevue",
		county:      County{State: "Washington", County: "King County"},
	},
	NewYork: {
		id:          "new-york",
		displayName: "New York",
		metroName:   "New York-Northern New Jersey-Long Island",
		county:      County{State: "New York", County: "New York County"},
	},
	Miami: {
		id:          "miami",
		displayName: "Miami",
		metroName:   "Miami-Fort Lauderdale-Miami Beach",
		county:      County{State: "Florida", County: "Miami-Dade County"},
	},
	LosAngeles: {
		id:          "los-angeles",
		displayName: "Los Angeles",
		metroName:   "Los Angeles-Long Beach-Santa Ana",
		county:      County{State: "California", County: "Los Angeles County"},
	},
}

var countyToCity = func() map[County]City {
	m := make(map[County]City, len(cityTable))
	for c, info := range cityTable {
		m[info.county] = c
	}
	return m
}()

func AllCities() []City {
	return []City{Chicago, Seattle, NewYork, Miami, LosAngeles}
}

func (c City) Valid() bool {
	_, ok := cityTable[c]
	return ok
}

func (c City) String() string {
	if info, ok := cityTable[c]; ok {
		return info.id
	}
	return fmt.Sprintf("City(%d)", int(c))
}

func (c City) DisplayName() string {
	return cityTable[c].displayName
}

// MetroName is the city identifier used by the OpenAQ API.
func (c City) MetroName() string {
	return cityTable[c].metroName
}

func (c City) County() County {
	return cityTable[c].county
}

// ParseCity accepts a canonical id ("new-york") or an OpenAQ metro name.
func ParseCity(s string) (City, error) {
	s = strings.TrimSpace(s)
	for c, info := range cityTable {
		if strings.EqualFold(s, info.id) || s == info.metroName {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownCity, s)
}

// CityForMetro matches an OpenAQ metro name exactly.
func CityForMetro(name string) (City, bool) {
	for c, info := range cityTable {
		if name == info.metroName {
			return c, true
		}
	}
	return 0, false
}

// CityForCounty maps a mobility report region to a tracked city. The match is
// exact on both the state and the county name.
func CityForCounty(state, county string) (City, bool) {
	c, ok := countyToCity[County{State: state, County: county}]
	return c, ok
}

func (c City) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid city %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *City) UnmarshalText(text []byte) error {
	parsed, err := ParseCity(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
