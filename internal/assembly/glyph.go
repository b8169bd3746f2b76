package assembly

import (
	"bytes"
	"compress/zlib"
	"image"
	"sync"

	"golang.org/x/image/vector"
)

// glyphPixels is the raster resolution of the checkmark image.
const glyphPixels = 40

var checkmarkOutline = [][2]float32{
	{4, 21}, {10, 15}, {16, 22}, {31, 5}, {37, 11}, {16, 34},
}

type glyphImage struct {
	color []byte
	alpha []byte
}

var checkmark = sync.OnceValue(func() glyphImage {
	z := vector.NewRasterizer(glyphPixels, glyphPixels)
	z.MoveTo(checkmarkOutline[0][0], checkmarkOutline[0][1])
	for _, p := range checkmarkOutline[1:] {
		z.LineTo(p[0], p[1])
	}
	z.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, glyphPixels, glyphPixels))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return glyphImage{
		color: deflate(make([]byte, glyphPixels*glyphPixels)),
		alpha: deflate(mask.Pix),
	}
})

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	w, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	_, _ = w.Write(data)
	_ = w.Close()
	return buf.Bytes()
}
