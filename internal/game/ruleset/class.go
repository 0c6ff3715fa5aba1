package ruleset

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Class is the closed set of card classes.
type Class int

const (
	ClassUnknown Class = iota
	ClassTank
	ClassDamage
	ClassSupport
	ClassIntel
)

// AllClasses lists every playable class in canonical order.
var AllClasses = []Class{ClassTank, ClassDamage, ClassSupport, ClassIntel}

// String returns the display name of the class.
func (c Class) String() string {
	switch c {
	case ClassTank:
		return "Tank"
	case ClassDamage:
		return "Damage"
	case ClassSupport:
		return "Support"
	case ClassIntel:
		return "Intel"
	default:
		return "Unknown"
	}
}

// ParseClass converts a class name to a Class. Matching is case-insensitive.
//
// Postcondition: Returns a playable Class and nil, or ClassUnknown and a non-nil error.
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tank":
		return ClassTank, nil
	case "damage":
		return ClassDamage, nil
	case "support":
		return ClassSupport, nil
	case "intel":
		return ClassIntel, nil
	}
	return ClassUnknown, fmt.Errorf("unknown class %q", s)
}

// UnmarshalYAML decodes a class from its name.
func (c *Class) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseClass(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML encodes a class as its name.
func (c Class) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}
