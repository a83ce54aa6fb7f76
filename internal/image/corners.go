package imagepkg

import "image"

// roundCorners clears every pixel outside a rounded rectangle spanning img.
func roundCorners(img *image.NRGBA, r int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if r <= 0 || w == 0 || h == 0 {
		return
	}
	r = min(r, w/2, h/2)

	// Only the four r x r corner squares can fall outside.
	corners := []struct{ x0, y0, cx, cy int }{
		{0, 0, r, r},
		{w - r, 0, w - r, r},
		{0, h - r, r, h - r},
		{w - r, h - r, w - r, h - r},
	}
	rr := float64(r) * float64(r)
	for _, c := range corners {
		for y := c.y0; y < c.y0+r; y++ {
			for x := c.x0; x < c.x0+r; x++ {
				dx := float64(x) + 0.5 - float64(c.cx)
				dy := float64(y) + 0.5 - float64(c.cy)
				if dx*dx+dy*dy <= rr {
					continue
				}
				i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
				img.Pix[i+0] = 0
				img.Pix[i+1] = 0
				img.Pix[i+2] = 0
				img.Pix[i+3] = 0
			}
		}
	}
}
