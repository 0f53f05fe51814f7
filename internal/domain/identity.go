package domain

import "strings"

// Identity is what the external identity provider vouches for.
type Identity struct {
	Email string
	Name  string
}

// SplitName splits the display name into a first name and the remaining last name.
func (i Identity) SplitName() (first, last string) {
	parts := strings.Fields(i.Name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
