package service

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"metro/internal/domain"
)

// Network is the static station and ticket type table the fare engine runs on.
type Network struct {
	Name        string
	stations    []domain.Station
	offsets     map[string]int
	ticketTypes []domain.TicketType
	multipliers map[string]float64
}

// networkFile is the YAML layout accepted by LoadNetworkFile.
type networkFile struct {
	Name        string              `yaml:"name"`
	Stations    []domain.Station    `yaml:"stations"`
	TicketTypes []domain.TicketType `yaml:"ticket_types"`
}

// DefaultNetwork returns the Chennai Metro network.
func DefaultNetwork() *Network {
	n, err := NewNetwork("Chennai Metro",
		[]domain.Station{
			{Name: "Chennai Central", Offset: 0},
			{Name: "Park Town", Offset: 2},
			{Name: "Egmore", Offset: 4},
			{Name: "Kilpauk", Offset: 6},
			{Name: "Anna Nagar", Offset: 9},
			{Name: "Koyambedu", Offset: 12},
			{Name: "Vadapalani", Offset: 15},
			{Name: "Ashok Nagar", Offset: 18},
			{Name: "Guindy", Offset: 21},
			{Name: "Airport", Offset: 25},
		},
		[]domain.TicketType{
			{Name: "Single Journey", Multiplier: 1.0},
			{Name: "Return Journey", Multiplier: 1.8},
			{Name: "Day Pass", Multiplier: 3.0},
		},
	)
	if err != nil {
		panic(err)
	}
	return n
}

// NewNetwork validates and indexes a station and ticket type table.
// Station and ticket type order is kept for display.
func NewNetwork(name string, stations []domain.Station, ticketTypes []domain.TicketType) (*Network, error) {
	if len(stations) < 2 {
		return nil, fmt.Errorf("%w: at least two stations required", ErrInvalidNetwork)
	}
	if len(ticketTypes) == 0 {
		return nil, fmt.Errorf("%w: at least one ticket type required", ErrInvalidNetwork)
	}

	n := &Network{
		Name:        name,
		stations:    make([]domain.Station, len(stations)),
		offsets:     make(map[string]int, len(stations)),
		ticketTypes: make([]domain.TicketType, len(ticketTypes)),
		multipliers: make(map[string]float64, len(ticketTypes)),
	}
	copy(n.stations, stations)
	copy(n.ticketTypes, ticketTypes)

	for _, s := range stations {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: station with empty name", ErrInvalidNetwork)
		}
		if s.Offset < 0 {
			return nil, fmt.Errorf("%w: station %q has negative offset", ErrInvalidNetwork, s.Name)
		}
		if _, dup := n.offsets[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate station %q", ErrInvalidNetwork, s.Name)
		}
		n.offsets[s.Name] = s.Offset
	}

	for _, t := range ticketTypes {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: ticket type with empty name", ErrInvalidNetwork)
		}
		if t.Multiplier <= 0 {
			return nil, fmt.Errorf("%w: ticket type %q needs a positive multiplier", ErrInvalidNetwork, t.Name)
		}
		if _, dup := n.multipliers[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate ticket type %q", ErrInvalidNetwork, t.Name)
		}
		n.multipliers[t.Name] = t.Multiplier
	}

	return n, nil
}

// LoadNetworkFile reads a network definition from a YAML file.
func LoadNetworkFile(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network file: %w", err)
	}
	return ParseNetwork(data)
}

// ParseNetwork parses a YAML network definition.
func ParseNetwork(data []byte) (*Network, error) {
	var f networkFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNetwork, err)
	}
	return NewNetwork(f.Name, f.Stations, f.TicketTypes)
}

// Stations returns the stations in display order.
func (n *Network) Stations() []domain.Station {
	out := make([]domain.Station, len(n.stations))
	copy(out, n.stations)
	return out
}

// StationNames returns the station names in display order.
func (n *Network) StationNames() []string {
	names := make([]string, len(n.stations))
	for i, s := range n.stations {
		names[i] = s.Name
	}
	return names
}

// TicketTypes returns the ticket types in display order.
func (n *Network) TicketTypes() []domain.TicketType {
	out := make([]domain.TicketType, len(n.ticketTypes))
	copy(out, n.ticketTypes)
	return out
}

// Offset returns the line offset of a station.
func (n *Network) Offset(station string) (int, bool) {
	off, ok := n.offsets[station]
	return off, ok
}

// Multiplier returns the fare multiplier of a ticket type.
func (n *Network) Multiplier(ticketType string) (float64, bool) {
	m, ok := n.multipliers[ticketType]
	return m, ok
}
