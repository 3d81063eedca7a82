// ula_constants.go - ZX Spectrum ULA video memory layout and palette.

package main

const (
	// ULAVRAMBase is the bitmap/attribute memory's base logical address.
	ULAVRAMBase = 0x4000

	// ULABitmapSize is the pixel-bitmap section: 256x192 bits = 6144 bytes.
	ULABitmapSize = 6144

	// ULAAttrOffset is the attribute section's offset from ULAVRAMBase.
	ULAAttrOffset = 0x1800

	// ULAAttrSize is the attribute section: 32x24 cells = 768 bytes.
	ULAAttrSize = 768

	ULADisplayWidth  = 256
	ULADisplayHeight = 192

	ULACellWidth  = 8
	ULACellHeight = 8
	ULACellsX     = 32
	ULACellsY     = 24

	ULABorderLeft   = 32
	ULABorderRight  = 32
	ULABorderTop    = 32
	ULABorderBottom = 32

	ULAFrameWidth  = ULADisplayWidth + ULABorderLeft + ULABorderRight
	ULAFrameHeight = ULADisplayHeight + ULABorderTop + ULABorderBottom

	// ULAFlashFrames is the flash toggle interval: 16 frames at 50Hz,
	// giving the ~1.56Hz ink/paper swap.
	ULAFlashFrames = 16

	// ULAFirstDisplayLine is the scanline where the 192 active display
	// lines begin; lines 0..63 are top border, 256..311 bottom border.
	ULAFirstDisplayLine = 64

	// ULAFetchWindow is the T-state span at the start of an active line
	// during which the ULA fetches pixel/attribute pairs.
	ULAFetchWindow = 128

	// Z80ULAPort is the authentic Spectrum ULA I/O port. Any even address
	// decodes to it; 0xFE is the conventional value used for OUT/IN.
	Z80ULAPort = 0xFE
)

// ULAColorNormal holds RGB values for ink/paper 0-7 when BRIGHT is clear.
var ULAColorNormal = [8][3]uint8{
	{0, 0, 0},
	{0, 0, 205},
	{205, 0, 0},
	{205, 0, 205},
	{0, 205, 0},
	{0, 205, 205},
	{205, 205, 0},
	{205, 205, 205},
}

// ULAColorBright holds RGB values for ink/paper 0-7 when BRIGHT is set.
var ULAColorBright = [8][3]uint8{
	{0, 0, 0},
	{0, 0, 255},
	{255, 0, 0},
	{255, 0, 255},
	{0, 255, 0},
	{0, 255, 255},
	{255, 255, 0},
	{255, 255, 255},
}
