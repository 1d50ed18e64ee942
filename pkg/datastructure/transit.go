package datastructure

import (
	"github.com/sentiero-app/sentiero/pkg/geo"
)

// TransitStop. one stop of the static transit directory.
type TransitStop struct {
	id       string
	name     string
	location geo.Coordinate
	lines    []string
}

func NewTransitStop(id, name string, location geo.Coordinate, lines []string) TransitStop {
	return TransitStop{
		id:       id,
		name:     name,
		location: location,
		lines:    lines,
	}
}

func (s TransitStop) GetID() string {
	return s.id
}

func (s TransitStop) GetName() string {
	return s.name
}

func (s TransitStop) GetLocation() geo.Coordinate {
	return s.location
}

func (s TransitStop) GetLines() []string {
	return s.lines
}

func (s TransitStop) ServesLine(line string) bool {
	for _, l := range s.lines {
		if l == line {
			return true
		}
	}
	return false
}
