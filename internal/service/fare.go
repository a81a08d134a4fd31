package service

import (
	"fmt"
	"math"

	"metro/internal/domain"
)

// FareBand is one step of the distance-based base fare table.
type FareBand struct {
	MaxDistance int // Inclusive upper bound
	Fare        int
}

// fareBands is the base fare step function. Distances above the last band
// pay maxBaseFare.
var fareBands = []FareBand{
	{MaxDistance: 2, Fare: 10},
	{MaxDistance: 5, Fare: 20},
	{MaxDistance: 10, Fare: 30},
	{MaxDistance: 15, Fare: 40},
}

const maxBaseFare = 50

// FareQuote is the fare breakdown for one passenger.
type FareQuote struct {
	Origin      string           `json:"origin"`
	Destination string           `json:"destination"`
	TicketType  string           `json:"ticket_type"`
	Distance    int              `json:"distance"`
	BaseFare    int              `json:"base_fare"`
	Multiplier  float64          `json:"multiplier"`
	Fare        int              `json:"fare"`
	Direction   domain.Direction `json:"direction"`
}

// FareEngine prices journeys on a network.
type FareEngine struct {
	network *Network
}

// NewFareEngine creates a new FareEngine.
func NewFareEngine(network *Network) *FareEngine {
	return &FareEngine{network: network}
}

// BaseFare returns the base fare for a distance.
func BaseFare(distance int) int {
	for _, band := range fareBands {
		if distance <= band.MaxDistance {
			return band.Fare
		}
	}
	return maxBaseFare
}

// Quote prices a journey between two stations for one passenger.
func (e *FareEngine) Quote(origin, destination, ticketType string) (FareQuote, error) {
	from, ok := e.network.Offset(origin)
	if !ok {
		return FareQuote{}, fmt.Errorf("%w: %q", ErrUnknownStation, origin)
	}
	to, ok := e.network.Offset(destination)
	if !ok {
		return FareQuote{}, fmt.Errorf("%w: %q", ErrUnknownStation, destination)
	}
	multiplier, ok := e.network.Multiplier(ticketType)
	if !ok {
		return FareQuote{}, fmt.Errorf("%w: %q", ErrUnknownTicketType, ticketType)
	}

	distance := to - from
	if distance < 0 {
		distance = -distance
	}
	base := BaseFare(distance)

	return FareQuote{
		Origin:      origin,
		Destination: destination,
		TicketType:  ticketType,
		Distance:    distance,
		BaseFare:    base,
		Multiplier:  multiplier,
		Fare:        int(math.Round(float64(base) * multiplier)),
		Direction:   directionOf(from, to),
	}, nil
}

// Fare returns the per-passenger fare for a journey.
func (e *FareEngine) Fare(origin, destination, ticketType string) (int, error) {
	q, err := e.Quote(origin, destination, ticketType)
	if err != nil {
		return 0, err
	}
	return q.Fare, nil
}

// Direction returns the travel direction between two stations.
func (e *FareEngine) Direction(origin, destination string) (domain.Direction, error) {
	from, ok := e.network.Offset(origin)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStation, origin)
	}
	to, ok := e.network.Offset(destination)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStation, destination)
	}
	return directionOf(from, to), nil
}

func directionOf(from, to int) domain.Direction {
	if from < to {
		return domain.DirectionNorthbound
	}
	return domain.DirectionSouthbound
}
