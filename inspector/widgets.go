package inspector

import (
	"fmt"
	"strings"
)

// Tone is a rendering hint the viewer maps to a terminal style.
type Tone int

const (
	ToneText Tone = iota
	ToneDim
	ToneHeader
	ToneGood
	ToneLow
)

// Line is one rendered panel row.
type Line struct {
	Text string
	Tone Tone
}

// BarWidth is the number of cells in a bar widget.
const BarWidth = 12

// lowRatio is the fill ratio below which bars render as low.
const lowRatio = 0.3

// Label renders a text value.
func Label(name string, value interface{}, options map[string]string) Line {
	return Line{Text: fmt.Sprintf("%s: %s", name, FormatValue(value, options["fmt"])), Tone: ToneText}
}

// Bar renders a horizontal fill bar followed by the value.
func Bar(name string, value float64, options map[string]string) Line {
	maxVal := GetMax(options)
	ratio := value / maxVal
	ratio = max(0, min(ratio, 1))

	filled := int(ratio*BarWidth + 0.5)
	tone := ToneGood
	if ratio < lowRatio {
		tone = ToneLow
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-10s ", name)
	b.WriteString(strings.Repeat("█", filled))
	b.WriteString(strings.Repeat("░", BarWidth-filled))
	fmt.Fprintf(&b, " %s/%s", FormatValue(value, options["fmt"]), FormatValue(maxVal, "%g"))
	return Line{Text: b.String(), Tone: tone}
}

// Bool renders an on/off indicator.
func Bool(name string, value bool) Line {
	if value {
		return Line{Text: "[x] " + name, Tone: ToneGood}
	}
	return Line{Text: "[ ] " + name, Tone: ToneDim}
}

// Header renders a section title.
func Header(title string) Line {
	return Line{Text: "── " + title + " ──", Tone: ToneHeader}
}

// RenderField renders a field with its widget.
func RenderField(field Field) Line {
	switch field.Widget {
	case WidgetBar:
		if v, ok := GetFloatValue(field.Value); ok {
			if _, hasFmt := field.Options["fmt"]; !hasFmt {
				field.Options["fmt"] = "%g"
			}
			return Bar(field.Name, v, field.Options)
		}
	case WidgetBool:
		if v, ok := field.Value.(bool); ok {
			return Bool(field.Name, v)
		}
	}
	return Label(field.Name, field.Value, field.Options)
}

// sparkRunes are eighth-height blocks, lowest first.
var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values scaled between lo and hi, one rune per value.
func Sparkline(values []float64, lo, hi float64) string {
	var b strings.Builder
	span := hi - lo
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkRunes)-1))
			idx = max(0, min(idx, len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
