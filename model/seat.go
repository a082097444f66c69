package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Seat identifies a single seat by section, row and column. It is an
// immutable value type; two seats are equal when all three fields match.
type Seat struct {
	Section string `json:"section" validate:"required"`
	Row     int    `json:"row" validate:"min=0"`
	Column  int    `json:"column" validate:"min=0"`
}

// String renders the canonical seat key used as a lease-store key
// component, e.g. "General:R0:C12".
func (s Seat) String() string {
	return fmt.Sprintf("%s:R%d:C%d", s.Section, s.Row, s.Column)
}

// ParseSeat parses the canonical "SECTION:R<row>:C<col>" form.
func ParseSeat(str string) (Seat, error) {
	parts := strings.Split(str, ":")
	if len(parts) != 3 || !strings.HasPrefix(parts[1], "R") || !strings.HasPrefix(parts[2], "C") {
		return Seat{}, fmt.Errorf("invalid seat string %q", str)
	}
	row, err := strconv.Atoi(strings.TrimPrefix(parts[1], "R"))
	if err != nil {
		return Seat{}, fmt.Errorf("invalid seat row in %q", str)
	}
	col, err := strconv.Atoi(strings.TrimPrefix(parts[2], "C"))
	if err != nil {
		return Seat{}, fmt.Errorf("invalid seat column in %q", str)
	}
	return Seat{Section: parts[0], Row: row, Column: col}, nil
}

// SeatsToJSON encodes a seat list to its canonical structured form for
// storage (seat assignments, lease hashes).
func SeatsToJSON(seats []Seat) string {
	b, _ := json.Marshal(seats)
	return string(b)
}

// SeatsFromJSON decodes a stored seat list. It accepts the canonical
// structured form as well as the legacy shape where seats were stored
// as bare canonical strings.
func SeatsFromJSON(data string) ([]Seat, error) {
	if strings.TrimSpace(data) == "" {
		return nil, nil
	}
	var seats []Seat
	if err := json.Unmarshal([]byte(data), &seats); err == nil {
		return seats, nil
	}
	var legacy []string
	if err := json.Unmarshal([]byte(data), &legacy); err != nil {
		return nil, fmt.Errorf("invalid seat list %q", data)
	}
	seats = make([]Seat, 0, len(legacy))
	for _, str := range legacy {
		seat, err := ParseSeat(str)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, nil
}

// SeatStrings renders every seat to its canonical string, for error
// messages naming the offending seats.
func SeatStrings(seats []Seat) []string {
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = s.String()
	}
	return out
}

// ContainsSeat reports whether seat appears in list.
func ContainsSeat(list []Seat, seat Seat) bool {
	for _, s := range list {
		if s == seat {
			return true
		}
	}
	return false
}

// RemoveSeats returns list without any seat present in remove.
func RemoveSeats(list, remove []Seat) []Seat {
	var out []Seat
	for _, s := range list {
		if !ContainsSeat(remove, s) {
			out = append(out, s)
		}
	}
	return out
}

// IntersectSeats returns the seats of want that appear in have.
func IntersectSeats(want, have []Seat) []Seat {
	var out []Seat
	for _, s := range want {
		if ContainsSeat(have, s) {
			out = append(out, s)
		}
	}
	return out
}
