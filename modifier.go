package utgard

// Modifier is an opaque 64-bit layout identifier used to negotiate compatible
// memory layouts across producers and consumers. Only two concrete layouts
// are recognized by this hardware; everything else is passed through opaquely
// during negotiation and rejected on import.
type Modifier uint64

const (
	// ModifierLinear is plain row-major storage.
	ModifierLinear Modifier = 0
	// ModifierTiled16x16 is the hardware's 16x16-block u-interleaved layout.
	ModifierTiled16x16 Modifier = 0x08<<56 | 1
	// ModifierInvalid is the "no preference" sentinel.
	ModifierInvalid Modifier = 1<<56 - 1
)

func (m Modifier) String() string {
	switch m {
	case ModifierLinear:
		return "linear"
	case ModifierTiled16x16:
		return "tiled-16x16"
	case ModifierInvalid:
		return "invalid"
	}
	return "unknown"
}

func findModifier(modifiers []Modifier, want Modifier) bool {
	for _, m := range modifiers {
		if m == want {
			return true
		}
	}
	return false
}
