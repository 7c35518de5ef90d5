package table

import (
	"bytes"
	"fmt"
	"time"

	"cashgame/bot/common"
	"cashgame/domain/entities"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

const settlementImageName = "settlement.png"

type cardColumn struct {
	header string
	x      float64
}

// settlementCard draws a settlement as a PNG scoreboard
type settlementCard struct {
	width     int
	padding   float64
	rowHeight float64
}

func newSettlementCard() *settlementCard {
	return &settlementCard{
		width:     420,
		padding:   15,
		rowHeight: 24,
	}
}

// Render draws the per-player nets followed by the payments
func (c *settlementCard) Render(session *entities.Session, settlement *entities.Settlement) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithFields(log.Fields{
			"duration_ms": time.Since(start).Milliseconds(),
			"players":     len(settlement.Players),
			"transfers":   len(settlement.Transfers),
		}).Debug("Settlement image generation completed")
	}()

	// Title + header + player rows + gap + payment title + payment rows + bottom padding
	rows := len(settlement.Players) + len(settlement.Transfers)
	if len(settlement.Transfers) == 0 {
		rows++
	}
	height := int(40 + 30 + float64(rows)*c.rowHeight + 40 + c.padding)

	dc := gg.NewContext(c.width, height)

	// Background gradient
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height)
		dc.SetRGB(0.03+t*0.02, 0.06+t*0.04, 0.05+t*0.03)
		dc.DrawLine(0, float64(y), float64(c.width), float64(y))
		dc.Stroke()
	}

	titleFace, err := loadFont(gobold.TTF, 14)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	y := 25.0
	dc.SetFontFace(titleFace)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(common.Truncate(fmt.Sprintf("%s · %s", session.Name, session.Code), 40), c.padding, y)

	columns := []cardColumn{
		{header: "Player", x: c.padding},
		{header: "In", x: c.padding + 170},
		{header: "Out", x: c.padding + 250},
		{header: "Net", x: c.padding + 330},
	}

	y += 30
	dc.SetFontFace(face)
	dc.SetRGBA(0.3, 0.4, 0.35, 0.5)
	dc.DrawRectangle(0, y-15, float64(c.width), 20)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	for _, col := range columns {
		dc.DrawString(col.header, col.x, y)
	}

	for _, p := range settlement.Players {
		y += c.rowHeight
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawString(common.Truncate(p.Name, 20), columns[0].x, y)
		dc.DrawString(p.Invested.String(), columns[1].x, y)
		dc.DrawString(p.Extracted.String(), columns[2].x, y)

		switch {
		case p.Net > 0:
			dc.SetRGB(0.4, 1.0, 0.4)
		case p.Net < 0:
			dc.SetRGB(1.0, 0.4, 0.4)
		default:
			dc.SetRGB(0.8, 0.8, 0.8)
		}
		dc.DrawString(common.FormatSigned(p.Net), columns[3].x, y)
	}

	y += 40
	dc.SetFontFace(titleFace)
	dc.SetRGB(1, 0.84, 0)
	dc.DrawString("Payments", c.padding, y)
	dc.SetFontFace(face)

	if len(settlement.Transfers) == 0 {
		y += c.rowHeight
		dc.SetRGB(0.8, 0.8, 0.8)
		dc.DrawString("Everyone is square.", c.padding, y)
	}
	for _, t := range settlement.Transfers {
		y += c.rowHeight
		dc.SetRGB(0.9, 0.9, 0.9)
		line := fmt.Sprintf("%s -> %s", common.Truncate(t.FromName, 16), common.Truncate(t.ToName, 16))
		dc.DrawString(line, c.padding, y)
		dc.SetRGB(1, 0.84, 0)
		dc.DrawStringAnchored(t.Amount.String(), float64(c.width)-c.padding, y, 1, 0)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
