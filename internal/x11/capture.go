package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// CapturePixel reads one screen pixel from the root window. ZPixmap data on
// 24/32-bit depths is BGRx in memory order.
func (c *Connection) CapturePixel(x, y int) (r, g, b, a uint8, err error) {
	reply, err := xproto.GetImage(
		c.XUtil.Conn(),
		xproto.ImageFormatZPixmap,
		xproto.Drawable(c.Root),
		int16(x), int16(y),
		1, 1,
		0xffffffff,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to capture pixel at (%d,%d): %w", x, y, err)
	}
	if len(reply.Data) < 3 {
		return 0, 0, 0, 0, fmt.Errorf("short pixel reply at (%d,%d): %d bytes", x, y, len(reply.Data))
	}

	b, g, r = reply.Data[0], reply.Data[1], reply.Data[2]
	a = 0xff
	if reply.Depth == 32 && len(reply.Data) >= 4 {
		a = reply.Data[3]
	}
	return r, g, b, a, nil
}
