// Package tile defines the 16-bit map cell encoding shared by the editor,
// the level files and the animation scheduler.
//
// Layout:
//
//	bit 15     animated flag
//	bits 8-14  frame offset (animated cells only)
//	bits 0-7   animation id (animated cells only)
//
// When the animated flag is clear, bits 0-14 hold a plain tile index.
package tile

import "fmt"

// Cell is a single map cell.
type Cell uint16

const (
	animatedBit Cell = 1 << 15
	offsetShift      = 8

	// MaxAnimationID is the largest encodable animation id.
	MaxAnimationID = 0xff
	// MaxFrameOffset is the largest encodable per-placement frame offset.
	MaxFrameOffset = 0x7f
	// MaxTileIndex is the largest plain tile index a static cell can hold.
	MaxTileIndex = 0x7fff
)

// IsAnimated reports whether the animated flag is set.
func IsAnimated(c Cell) bool {
	return c&animatedBit != 0
}

// Decode extracts the animation id and frame offset. The result only has
// meaning when IsAnimated(c) is true.
func Decode(c Cell) (animID uint8, frameOffset uint8) {
	return uint8(c & 0xff), uint8((c >> offsetShift) & MaxFrameOffset)
}

// Encode packs an animated cell. Out of range inputs are clamped.
func Encode(animID, frameOffset int) Cell {
	animID = clamp(animID, MaxAnimationID)
	frameOffset = clamp(frameOffset, MaxFrameOffset)
	return animatedBit | Cell(frameOffset)<<offsetShift | Cell(animID)
}

// Static packs a plain tile index. Out of range inputs are clamped.
func Static(index int) Cell {
	return Cell(clamp(index, MaxTileIndex))
}

// TileIndex returns the plain tile index of a static cell (bits 0-14).
func (c Cell) TileIndex() int {
	return int(c &^ animatedBit)
}

func (c Cell) String() string {
	if IsAnimated(c) {
		id, off := Decode(c)
		return fmt.Sprintf("anim(%d+%d)", id, off)
	}
	return fmt.Sprintf("tile(%d)", c.TileIndex())
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
