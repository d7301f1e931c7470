package domain

import (
	"strconv"
	"strings"
)

const (
	MinAdults          = 1
	MaxAdults          = 6
	MinChildAge        = 0
	MaxChildAge        = 17
	MaxChildrenPerRoom = 4
	MaxRooms           = 5

	// UnsetChildAge marks a child whose age has not been chosen yet.
	UnsetChildAge = -1
)

type Occupancy struct {
	Adults   int   `json:"adults"`
	Children []int `json:"children"`
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseOccupancies reads "2,5,2|1" style strings. Adults and ages are clamped
// into range, extra children and rooms are dropped. Unparsable rooms are skipped.
func ParseOccupancies(s string) []Occupancy {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []Occupancy
	for _, room := range strings.Split(s, "|") {
		parts := strings.Split(strings.TrimSpace(room), ",")
		adults, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			continue
		}
		occ := Occupancy{Adults: clamp(adults, MinAdults, MaxAdults), Children: []int{}}
		for _, p := range parts[1:] {
			if len(occ.Children) == MaxChildrenPerRoom {
				break
			}
			age, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				continue
			}
			occ.Children = append(occ.Children, clamp(age, MinChildAge, MaxChildAge))
		}
		out = append(out, occ)
		if len(out) == MaxRooms {
			break
		}
	}
	return out
}

// FormatOccupancies is the inverse of ParseOccupancies.
func FormatOccupancies(rooms []Occupancy) string {
	parts := make([]string, 0, len(rooms))
	for _, r := range rooms {
		var b strings.Builder
		b.WriteString(strconv.Itoa(r.Adults))
		for _, age := range r.Children {
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(age))
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "|")
}

func TotalGuests(rooms []Occupancy) int {
	n := 0
	for _, r := range rooms {
		n += r.Adults + len(r.Children)
	}
	return n
}

// ValidateOccupancies rejects searches that cannot be submitted, including
// rooms that still carry an unset child age.
func ValidateOccupancies(rooms []Occupancy) error {
	if len(rooms) == 0 {
		return Invalid("occupancies", "at least one room is required")
	}
	if len(rooms) > MaxRooms {
		return Invalid("occupancies", "at most %d rooms", MaxRooms)
	}
	for i, r := range rooms {
		if r.Adults < MinAdults || r.Adults > MaxAdults {
			return Invalid("occupancies", "room %d needs %d-%d adults", i+1, MinAdults, MaxAdults)
		}
		if len(r.Children) > MaxChildrenPerRoom {
			return Invalid("occupancies", "room %d has more than %d children", i+1, MaxChildrenPerRoom)
		}
		for _, age := range r.Children {
			if age == UnsetChildAge {
				return Invalid("occupancies", "room %d has a child without an age", i+1)
			}
			if age < MinChildAge || age > MaxChildAge {
				return Invalid("occupancies", "room %d has a child age out of range", i+1)
			}
		}
	}
	return nil
}
