package domain

// Direction represents the travel direction along the line.
type Direction string

const (
	DirectionNorthbound Direction = "northbound"
	DirectionSouthbound Direction = "southbound"
)

// Station is a stop on the line. Offset is the distance marker along the line;
// increasing offsets run northbound.
type Station struct {
	Name   string `json:"name" yaml:"name"`
	Offset int    `json:"offset" yaml:"offset"`
}

// TicketType is a fare product with its multiplier over the base fare.
type TicketType struct {
	Name       string  `json:"name" yaml:"name"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}
