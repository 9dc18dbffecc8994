package utils

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	formatPNM     = "pnm"
	formatPNG     = "png"
	formatBMP     = "bmp"
	formatTIFF    = "tiff"
	formatUnknown = "unknown"
)

// DetectFormat sniffs the leading bytes of data and returns the container.
func DetectFormat(data []byte) string {
	if len(data) < 2 {
		return formatUnknown
	}
	// Binary PNM: "P6"
	if data[0] == 'P' && data[1] == '6' {
		return formatPNM
	}
	// BMP: "BM"
	if data[0] == 'B' && data[1] == 'M' {
		return formatBMP
	}
	if len(data) < 4 {
		return formatUnknown
	}
	// PNG: 89 50 4E 47
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return formatPNG
	}
	// TIFF: "II*\0" or "MM\0*"
	if bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")) {
		return formatTIFF
	}
	return formatUnknown
}

// FormatFromPath maps a file extension to a container name.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pnm", ".ppm":
		return formatPNM
	case ".png":
		return formatPNG
	case ".bmp":
		return formatBMP
	case ".tif", ".tiff":
		return formatTIFF
	}
	return formatUnknown
}

// ParseSize parses a "WxH" geometry string.
func ParseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok || ws == "" {
		return 0, 0, fmt.Errorf("invalid size '%s'", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w < 0 {
		return 0, 0, fmt.Errorf("invalid size '%s'", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 {
		return 0, 0, fmt.Errorf("invalid size '%s'", s)
	}
	return w, h, nil
}
