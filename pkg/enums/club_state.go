package enums

import "fmt"

// ClubState tracks the lifecycle of a club record. Deleted clubs are retained
// and can be restarted.
type ClubState string

const (
	ClubStateActive  ClubState = "active"
	ClubStateDeleted ClubState = "deleted"
)

var validClubStates = []ClubState{
	ClubStateActive,
	ClubStateDeleted,
}

// String implements fmt.Stringer.
func (s ClubState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ClubState.
func (s ClubState) IsValid() bool {
	for _, candidate := range validClubStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseClubState converts raw input into a ClubState.
func ParseClubState(value string) (ClubState, error) {
	for _, candidate := range validClubStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid club state %q", value)
}
