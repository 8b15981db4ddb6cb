package email

import (
	"bytes"
	"fmt"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

const (
	cardWidth  = 420
	cardHeight = 240
	gaugeR     = 72.0
)

// drawScoreCard renders the inline score gauge embedded in the report
// e-mail body.
func drawScoreCard(score int, title string) ([]byte, error) {
	dc := gg.NewContext(cardWidth, cardHeight)

	dc.SetRGB(1, 1, 1)
	dc.Clear()

	cx, cy := float64(cardWidth)/2, float64(cardHeight)/2+20

	// Background arc.
	dc.SetRGB255(230, 230, 230)
	dc.SetLineWidth(16)
	dc.DrawArc(cx, cy, gaugeR, math.Pi, 2*math.Pi)
	dc.Stroke()

	// Score arc. Sweep is proportional to the score.
	r, g, b := scoreRGB(score)
	dc.SetRGB255(r, g, b)
	dc.SetLineWidth(16)
	sweep := math.Pi * float64(score) / 100
	dc.DrawArc(cx, cy, gaugeR, math.Pi, math.Pi+sweep)
	dc.Stroke()

	dc.SetRGB255(40, 40, 40)
	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawStringAnchored(fmt.Sprintf("%d / 100", score), cx, cy-10, 0.5, 0.5)
	dc.DrawStringAnchored("Listing score", cx, cy+14, 0.5, 0.5)

	if title != "" {
		dc.DrawStringAnchored(truncate(title, 52), cx, 24, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode score card: %w", err)
	}
	return buf.Bytes(), nil
}

func scoreRGB(score int) (int, int, int) {
	switch {
	case score >= 75:
		return 34, 139, 34
	case score >= 50:
		return 218, 165, 32
	default:
		return 178, 34, 34
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
