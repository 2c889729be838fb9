package memutils

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// FlagStringMapping builds human-readable strings for bitmask types. Flag
// packages register their values in init and expose the result through the
// type's String method.
type FlagStringMapping[T constraints.Unsigned] struct {
	mapping map[T]string
}

func NewFlagStringMapping[T constraints.Unsigned]() FlagStringMapping[T] {
	return FlagStringMapping[T]{mapping: make(map[T]string)}
}

func (m FlagStringMapping[T]) Register(flag T, name string) {
	m.mapping[flag] = name
}

func (m FlagStringMapping[T]) FlagsToString(flags T) string {
	if flags == 0 {
		return "None"
	}

	var sb strings.Builder
	for i := 0; i < 64; i++ {
		bit := T(1) << i
		if bit == 0 {
			break
		}
		if flags&bit == 0 {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteRune('|')
		}
		name, ok := m.mapping[bit]
		if !ok {
			name = fmt.Sprintf("0x%x", uint64(bit))
		}
		sb.WriteString(name)
	}
	return sb.String()
}
