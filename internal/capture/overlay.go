package capture

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// HandConnections are the landmark pairs drawn as the hand skeleton.
var HandConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

var (
	boneColor  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	jointColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// DrawHands draws each hand's skeleton onto mat in place.
func DrawHands(mat *gocv.Mat, hands []detector.HandLandmarks) {
	if mat == nil || mat.Empty() {
		return
	}
	w, h := mat.Cols(), mat.Rows()

	for i := range hands {
		pts := toPixels(&hands[i], w, h)
		for _, c := range HandConnections {
			gocv.Line(mat, pts[c[0]], pts[c[1]], boneColor, 2)
		}
		for _, p := range pts {
			gocv.Circle(mat, p, 3, jointColor, -1)
		}
	}
}

func toPixels(hand *detector.HandLandmarks, w, h int) [detector.NumLandmarks]image.Point {
	var pts [detector.NumLandmarks]image.Point
	for i, p := range hand.Points {
		pts[i] = image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
	}
	return pts
}

// PreviewJPEG mirrors frame horizontally, overlays hands and encodes the
// result as JPEG. The frame itself is not modified.
func PreviewJPEG(frame *gocv.Mat, hands []detector.HandLandmarks) ([]byte, error) {
	img := frame.Clone()
	defer img.Close()

	DrawHands(&img, hands)
	gocv.Flip(img, &img, 1)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	// buf.GetBytes aliases C memory that Close frees.
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
