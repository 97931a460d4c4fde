package aggregate

import "github.com/shopspring/decimal"

// Palette is the fixed cyclic color list for chart segments.
var Palette = []string{"#ff6b6b", "#55efc4", "#74b9ff", "#a29bfe", "#fab1a0"}

var fullCircle = decimal.NewFromInt(360)

// Segment is one slice of the category pie chart, in degrees.
type Segment struct {
	Category   string
	Color      string
	Amount     decimal.Decimal
	Share      float64
	StartAngle float64
	EndAngle   float64
}

// Sweep returns the angular width of the segment.
func (s Segment) Sweep() float64 {
	return s.EndAngle - s.StartAngle
}

// Segments lays categories out contiguously from 0°, in encounter order, with
// colors taken from Palette by position. A zero total yields no segments.
func Segments(b CategoryBreakdown) []Segment {
	if !b.TotalExpense.IsPositive() || len(b.Categories) == 0 {
		return []Segment{}
	}

	segments := make([]Segment, 0, len(b.Categories))
	cursor := decimal.Zero
	for i, c := range b.Categories {
		share := c.Amount.Div(b.TotalExpense)
		sweep := share.Mul(fullCircle)
		end := cursor.Add(sweep)

		segments = append(segments, Segment{
			Category:   c.Category,
			Color:      Palette[i%len(Palette)],
			Amount:     c.Amount,
			Share:      share.InexactFloat64(),
			StartAngle: cursor.InexactFloat64(),
			EndAngle:   end.InexactFloat64(),
		})
		cursor = end
	}
	return segments
}
