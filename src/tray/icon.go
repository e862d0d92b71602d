package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

const iconSize = 32

var (
	iconBackground = color.NRGBA{R: 0x00, G: 0x78, B: 0xd4, A: 0xff}
	iconForeground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// iconPNG draws the tray icon: a rounded blue square with a white text
// cursor and a spark in the corner.
func iconPNG() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	const r = 6
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			if inRoundedRect(x, y, iconSize, r) {
				img.SetNRGBA(x, y, iconBackground)
			}
		}
	}
	// I-beam cursor.
	for y := 8; y < 24; y++ {
		img.SetNRGBA(12, y, iconForeground)
		img.SetNRGBA(13, y, iconForeground)
	}
	for x := 9; x < 17; x++ {
		img.SetNRGBA(x, 8, iconForeground)
		img.SetNRGBA(x, 23, iconForeground)
	}
	// Spark.
	for d := -3; d <= 3; d++ {
		img.SetNRGBA(22+d, 11, iconForeground)
		img.SetNRGBA(22, 11+d, iconForeground)
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func inRoundedRect(x, y, size, r int) bool {
	cx, cy := x, y
	switch {
	case x < r:
		cx = r
	case x >= size-r:
		cx = size - r - 1
	}
	switch {
	case y < r:
		cy = r
	case y >= size-r:
		cy = size - r - 1
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

// icoFromPNG wraps a PNG in a single-image ICO container, which Windows
// accepts since Vista.
func icoFromPNG(p []byte, size int) []byte {
	var buf bytes.Buffer
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.Write([]byte{dim, dim, 0, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32)) // bpp
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(p)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(6+16))
	buf.Write(p)
	return buf.Bytes()
}

// Icon returns the tray icon in the format systray expects on this platform.
func Icon() []byte {
	p := iconPNG()
	if runtime.GOOS == "windows" {
		return icoFromPNG(p, iconSize)
	}
	return p
}
