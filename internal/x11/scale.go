package x11

import (
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
)

const baseDPI = 96.0

// ScaleFactor derives the display scale from the Xft.dpi entry of the root
// window's RESOURCE_MANAGER property, the same knob desktop environments set
// for HiDPI. Missing or malformed resources mean an unscaled display.
func (c *Connection) ScaleFactor() float64 {
	reply, err := xproto.GetProperty(
		c.XUtil.Conn(), false, c.Root,
		xproto.AtomResourceManager, xproto.AtomString,
		0, 1<<20,
	).Reply()
	if err != nil || reply == nil || len(reply.Value) == 0 {
		return 1.0
	}
	return parseXftDPI(string(reply.Value)) / baseDPI
}

// parseXftDPI extracts the Xft.dpi value from an X resource database dump.
// Entries look like "Xft.dpi:\t192". Returns baseDPI when absent.
func parseXftDPI(resources string) float64 {
	for _, line := range strings.Split(resources, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(key) != "Xft.dpi" {
			continue
		}
		dpi, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || dpi <= 0 {
			return baseDPI
		}
		return dpi
	}
	return baseDPI
}
