package builtin

import (
	"embed"
	"io/fs"
)

// paletteFiles embeds the built-in block palette, one file per category.
//
//go:embed palette/*.yaml
var paletteFiles embed.FS

// PaletteFS returns the palette directory as a filesystem, with the
// "palette/" prefix removed.
func PaletteFS() (fs.FS, error) {
	return fs.Sub(paletteFiles, "palette")
}
