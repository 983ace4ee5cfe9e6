package certimage

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/yungbote/lms-backend/internal/logger"
)

// Input carries the denormalized fields stamped onto a certificate at
// issue time, so renders stay stable even if the course is later renamed.
type Input struct {
	StudentName string
	CourseName  string
	Code        string
	IssueDate   time.Time
}

type Renderer interface {
	Render(in Input) (bytes.Buffer, error)
}

type renderer struct {
	log       *logger.Logger
	titleFace font.Face
	nameFace  font.Face
	bodyFace  font.Face
}

// NewRenderer loads the TTF named by CERT_FONT. The font is parsed once
// and shared across renders.
func NewRenderer(baseLog *logger.Logger) (Renderer, error) {
	rendererLog := baseLog.With("service", "CertificateRenderer")

	fontPath := os.Getenv("CERT_FONT")
	if strings.TrimSpace(fontPath) == "" {
		return nil, fmt.Errorf("env var CERT_FONT is empty")
	}
	rendererLog.Info("Loading certificate font", "font", fontPath)

	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}

	newFace := func(size float64) font.Face {
		return truetype.NewFace(parsedFont, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingNone,
		})
	}

	return &renderer{
		log:       rendererLog,
		titleFace: newFace(64),
		nameFace:  newFace(52),
		bodyFace:  newFace(28),
	}, nil
}

func (r *renderer) Render(in Input) (bytes.Buffer, error) {
	const (
		width  = 1400
		height = 990
		margin = 60
	)

	dc := gg.NewContext(width, height)

	dc.SetColor(color.NRGBA{R: 0xFB, G: 0xFA, B: 0xF5, A: 0xFF})
	dc.Clear()

	// Double border frame.
	dc.SetColor(color.NRGBA{R: 0x1F, G: 0x3A, B: 0x5F, A: 0xFF})
	dc.SetLineWidth(8)
	dc.DrawRectangle(margin, margin, width-2*margin, height-2*margin)
	dc.Stroke()
	dc.SetLineWidth(2)
	dc.DrawRectangle(margin+14, margin+14, width-2*(margin+14), height-2*(margin+14))
	dc.Stroke()

	cx := float64(width) / 2

	dc.SetFontFace(r.titleFace)
	dc.SetColor(color.NRGBA{R: 0x1F, G: 0x3A, B: 0x5F, A: 0xFF})
	dc.DrawStringAnchored("Certificate of Completion", cx, 230, 0.5, 0.5)

	dc.SetFontFace(r.bodyFace)
	dc.SetColor(color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xFF})
	dc.DrawStringAnchored("This certifies that", cx, 360, 0.5, 0.5)

	dc.SetFontFace(r.nameFace)
	dc.SetColor(color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xFF})
	dc.DrawStringAnchored(in.StudentName, cx, 450, 0.5, 0.5)

	dc.SetFontFace(r.bodyFace)
	dc.SetColor(color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xFF})
	dc.DrawStringAnchored("has successfully completed the course", cx, 540, 0.5, 0.5)

	dc.SetFontFace(r.nameFace)
	dc.SetColor(color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xFF})
	dc.DrawStringAnchored(in.CourseName, cx, 630, 0.5, 0.5)

	dc.SetFontFace(r.bodyFace)
	dc.SetColor(color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xFF})
	dc.DrawStringAnchored(in.IssueDate.Format("January 2, 2006"), cx, 760, 0.5, 0.5)
	dc.DrawStringAnchored(in.Code, cx, 850, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return bytes.Buffer{}, fmt.Errorf("failed to encode certificate PNG: %w", err)
	}
	return buf, nil
}
