// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"errors"
	"fmt"
)

// ErrInvalidRole is returned when a participant is registered with a role
// outside the fixed set.
var ErrInvalidRole = errors.New("invalid role")

// Role is the category a participant registers under. The zero value is not
// a valid role.
type Role uint8

const (
	TraumaTherapist Role = iota + 1
	QuantumPhysicist
	SoundHealer
	PermacultureDesigner
)

var roleNames = map[Role]string{
	TraumaTherapist:      "trauma_therapist",
	QuantumPhysicist:     "quantum_physicist",
	SoundHealer:          "sound_healer",
	PermacultureDesigner: "permaculture_designer",
}

// Roles returns every valid role in declaration order.
func Roles() []Role {
	return []Role{TraumaTherapist, QuantumPhysicist, SoundHealer, PermacultureDesigner}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// ParseRole maps a role name such as "sound_healer" to its Role.
func ParseRole(name string) (Role, error) {
	for role, n := range roleNames {
		if n == name {
			return role, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRole, name)
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}
