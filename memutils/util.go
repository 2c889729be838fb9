package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

const (
	// TileSize is the width and height, in blocks, of one hardware tile
	TileSize = 16
	// LevelAlignment is the required alignment of every independently-addressed mip level's
	// base offset
	LevelAlignment = 64
)

type Number interface {
	~int | ~uint
}

func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

func AlignDown(value int, alignment uint) int {
	return value & int(^(alignment - 1))
}

// Minify halves a mip dimension the requested number of times, never going below 1.
func Minify(value int, levels int) int {
	value >>= levels
	if value < 1 {
		return 1
	}
	return value
}
