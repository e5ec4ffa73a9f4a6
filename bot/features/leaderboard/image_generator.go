package leaderboard

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"

	"honorbot/bot/common"
	"honorbot/models"
)

// standingsImageName is the attachment filename the embeds reference.
const standingsImageName = "standings.png"

const maxRenderedNameLen = 16

// tableColumn defines one column of the rendered standings table.
type tableColumn struct {
	header string
	x      int
	color  [3]float64
}

// standingsRow is one rendered row; cells align with the column list.
type standingsRow struct {
	rank  int
	cells []string
}

// standingsImageGenerator renders the leaderboard as a PNG table, which
// reads better in a pinned channel message than an embed full of markdown.
type standingsImageGenerator struct {
	width     int
	padding   int
	rowHeight int
}

func newStandingsImageGenerator() *standingsImageGenerator {
	return &standingsImageGenerator{
		width:     320,
		padding:   15,
		rowHeight: 26,
	}
}

// renderAllTime renders the balance standings.
func (g *standingsImageGenerator) renderAllTime(accounts []*models.UserAccount) ([]byte, error) {
	columns := []tableColumn{
		{header: "#", x: g.padding, color: [3]float64{0.85, 0.85, 0.9}},
		{header: "Player", x: g.padding + 25, color: [3]float64{1, 1, 1}},
		{header: "Points", x: g.padding + 190, color: [3]float64{0.85, 1, 0.85}},
	}

	rows := make([]standingsRow, len(accounts))
	for i, account := range accounts {
		rows[i] = standingsRow{
			rank: i + 1,
			cells: []string{
				fmt.Sprintf("%d", i+1),
				truncateName(account.DisplayName),
				common.FormatPoints(account.Balance),
			},
		}
	}

	return g.renderTable(columns, rows)
}

// renderMonthly renders the points-earned-this-month standings.
func (g *standingsImageGenerator) renderMonthly(standings []*models.MonthlyStanding) ([]byte, error) {
	columns := []tableColumn{
		{header: "#", x: g.padding, color: [3]float64{0.85, 0.85, 0.9}},
		{header: "Player", x: g.padding + 25, color: [3]float64{1, 1, 1}},
		{header: "Earned", x: g.padding + 190, color: [3]float64{0.85, 0.95, 1}},
	}

	rows := make([]standingsRow, len(standings))
	for i, standing := range standings {
		rows[i] = standingsRow{
			rank: i + 1,
			cells: []string{
				fmt.Sprintf("%d", i+1),
				truncateName(standing.DisplayName),
				"+" + common.FormatPoints(standing.Earned),
			},
		}
	}

	return g.renderTable(columns, rows)
}

func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxRenderedNameLen {
		return name
	}
	return string(runes[:maxRenderedNameLen-1]) + "…"
}

// renderTable draws the table and encodes it as PNG.
func (g *standingsImageGenerator) renderTable(columns []tableColumn, rows []standingsRow) ([]byte, error) {
	// Header band plus one band per row plus bottom padding.
	height := 25 + 30 + len(rows)*g.rowHeight + 15

	dc := gg.NewContext(g.width, height)
	dc.SetFillRule(gg.FillRuleWinding)

	// Dark vertical gradient background.
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height)
		dc.SetRGB(0.02+t*0.03, 0.02+t*0.05, 0.05+t*0.1)
		dc.DrawLine(0, float64(y), float64(g.width), float64(y))
		dc.Stroke()
	}

	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(face)

	y := float64(25)

	dc.SetRGBA(0.3, 0.3, 0.4, 0.4)
	dc.DrawRectangle(0, y-15, float64(g.width), 20)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	for _, col := range columns {
		drawSharpText(dc, col.header, float64(col.x), y)
	}

	dc.SetRGBA(0.6, 0.6, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y+8, float64(g.width), y+8)
	dc.Stroke()

	y += 30
	for i, row := range rows {
		g.drawRowBand(dc, i, y)

		if i < 3 {
			g.drawRankBadge(dc, i, row.rank, y, face)
		} else {
			dc.SetRGB(columns[0].color[0], columns[0].color[1], columns[0].color[2])
			drawSharpText(dc, row.cells[0], float64(columns[0].x), y)
		}

		for j := 1; j < len(columns) && j < len(row.cells); j++ {
			col := columns[j]
			dc.SetRGB(col.color[0], col.color[1], col.color[2])
			drawSharpText(dc, row.cells[j], float64(col.x), y)
		}

		y += float64(g.rowHeight)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

var medalRowColors = [3][4]float64{
	{1, 0.84, 0, 0.1},      // gold
	{0.8, 0.8, 0.8, 0.08},  // silver
	{0.8, 0.5, 0.2, 0.06},  // bronze
}

func (g *standingsImageGenerator) drawRowBand(dc *gg.Context, index int, y float64) {
	if index < 3 {
		c := medalRowColors[index]
		dc.SetRGBA(c[0], c[1], c[2], c[3])
	} else {
		dc.SetRGBA(0.5, 0.5, 0.6, 0.02)
	}
	dc.DrawRectangle(0, y-15, float64(g.width), float64(g.rowHeight))
	dc.Fill()
}

func (g *standingsImageGenerator) drawRankBadge(dc *gg.Context, index, rank int, y float64, face font.Face) {
	var r, gr, b float64
	switch index {
	case 0:
		r, gr, b = 1, 0.84, 0
	case 1:
		r, gr, b = 0.75, 0.75, 0.75
	case 2:
		r, gr, b = 0.8, 0.5, 0.2
	}
	dc.SetRGB(r, gr, b)
	dc.DrawCircle(float64(g.padding+3), y-4, 5)
	dc.Fill()

	dc.SetRGB(0, 0, 0)
	if badgeFace, err := loadFont(gobold.TTF, 9); err == nil {
		dc.SetFontFace(badgeFace)
	}
	dc.DrawStringAnchored(fmt.Sprintf("%d", rank), float64(g.padding+3), y-5, 0.5, 0.4)
	dc.SetFontFace(face)
}

// drawSharpText draws text with a subtle shadow for perceived sharpness.
func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()

	dc.DrawString(text, x, y)
}

func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:       size,
		DPI:        72,
		Hinting:    font.HintingFull,
		SubPixelsX: 4,
		SubPixelsY: 4,
	}), nil
}
