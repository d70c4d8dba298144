package inspector

import (
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/telemetry"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag     string
		widget  Widget
		options map[string]string
	}{
		{"", WidgetAuto, map[string]string{}},
		{"bar", WidgetBar, map[string]string{}},
		{"bar,max:200", WidgetBar, map[string]string{"max": "200"}},
		{"bar,maxfield:Max", WidgetBar, map[string]string{"maxfield": "Max"}},
		{"label,fmt:%.1f", WidgetLabel, map[string]string{"fmt": "%.1f"}},
		{"skip", WidgetSkip, map[string]string{}},
		{"bogus", WidgetAuto, map[string]string{}},
	}

	for _, tt := range tests {
		widget, options := ParseTag(tt.tag)
		if widget != tt.widget {
			t.Errorf("ParseTag(%q) widget = %v, want %v", tt.tag, widget, tt.widget)
		}
		if len(options) != len(tt.options) {
			t.Errorf("ParseTag(%q) options = %v, want %v", tt.tag, options, tt.options)
			continue
		}
		for k, v := range tt.options {
			if options[k] != v {
				t.Errorf("ParseTag(%q) option %s = %q, want %q", tt.tag, k, options[k], v)
			}
		}
	}
}

func TestExtractFieldsResolvesMaxField(t *testing.T) {
	fields := ExtractFields(&components.Calories{Current: 30, Max: 120})
	if len(fields) != 1 {
		t.Fatalf("got %d fields, want 1 (Max is skipped)", len(fields))
	}
	f := fields[0]
	if f.Name != "Current" || f.Widget != WidgetBar {
		t.Errorf("field = %+v", f)
	}
	if GetMax(f.Options) != 120 {
		t.Errorf("GetMax = %v, want 120", GetMax(f.Options))
	}
}

func TestExtractFieldsCreature(t *testing.T) {
	c := components.Creature{ID: 4, Intent: components.IntentSeekFood, PathFailed: true}
	names := map[string]Field{}
	for _, f := range ExtractFields(c) {
		names[f.Name] = f
	}

	for _, skipped := range []string{"Action", "Path", "Pregnancy", "Unreachable", "BirthTick", "ParentID"} {
		if _, ok := names[skipped]; ok {
			t.Errorf("field %s should be skipped", skipped)
		}
	}
	if f := names["PathFailed"]; f.Widget != WidgetBool {
		t.Errorf("PathFailed widget = %v, want bool", f.Widget)
	}
	if got := RenderField(names["Intent"]).Text; got != "Intent: seek_food" {
		t.Errorf("Intent renders as %q", got)
	}
	if ExtractFields(42) != nil {
		t.Error("ExtractFields on non-struct should return nil")
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		value  float64
		max    string
		filled int
		tone   Tone
	}{
		{100, "100", BarWidth, ToneGood},
		{50, "100", BarWidth / 2, ToneGood},
		{10, "100", 1, ToneLow},
		{-5, "100", 0, ToneLow},
		{500, "100", BarWidth, ToneGood},
	}

	for _, tt := range tests {
		line := Bar("Cal", tt.value, map[string]string{"max": tt.max})
		if got := strings.Count(line.Text, "█"); got != tt.filled {
			t.Errorf("Bar(%v) filled = %d, want %d", tt.value, got, tt.filled)
		}
		if got := strings.Count(line.Text, "█") + strings.Count(line.Text, "░"); got != BarWidth {
			t.Errorf("Bar(%v) width = %d, want %d", tt.value, got, BarWidth)
		}
		if line.Tone != tt.tone {
			t.Errorf("Bar(%v) tone = %v, want %v", tt.value, line.Tone, tt.tone)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 7, 14}, 0, 14); got != "▁▄█" {
		t.Errorf("Sparkline = %q, want ▁▄█", got)
	}
	if got := Sparkline([]float64{3, 3}, 3, 3); got != "▁▁" {
		t.Errorf("flat Sparkline = %q", got)
	}
}

func TestSelectAt(t *testing.T) {
	snap := &telemetry.Snapshot{Creatures: []telemetry.CreatureState{
		{ID: 2, X: 1, Y: 1},
		{ID: 5, X: 1, Y: 1},
		{ID: 7, X: 3, Y: 0},
	}}
	ins := NewInspector()

	if !ins.SelectAt(snap, 1, 1) {
		t.Fatal("no creature selected at (1,1)")
	}
	if id, ok := ins.Selected(); !ok || id != 2 {
		t.Errorf("Selected() = %d, %v, want 2", id, ok)
	}

	if ins.SelectAt(snap, 0, 0) {
		t.Error("selected a creature on an empty cell")
	}
	if _, ok := ins.Selected(); ok {
		t.Error("empty click should deselect")
	}
}

func TestLines(t *testing.T) {
	ins := NewInspector()
	subject := Subject{
		Position: components.Position{X: 3, Y: 4},
		Calories: components.Calories{Current: 40, Max: 100},
		Creature: components.Creature{
			ID:     9,
			Intent: components.IntentSeekFood,
			Action: components.Eat(12, 3),
		},
		Lifetime: &telemetry.LifetimeStats{BirthTick: 10, Meals: 2},
		Tick:     25,
	}
	subject.Creature.Action.Progress = 1

	var text []string
	for _, l := range ins.Lines(subject) {
		text = append(text, l.Text)
	}
	joined := strings.Join(text, "\n")

	for _, want := range []string{"Creature #9", "Position: (3,4)", "40/100", "Intent: seek_food", "plant 12", "1/3", "Age: 15", "Meals: 2"} {
		if !strings.Contains(joined, want) {
			t.Errorf("panel missing %q:\n%s", want, joined)
		}
	}
	for _, hidden := range []string{"BirthTick", "ParentID"} {
		if strings.Contains(joined, hidden) {
			t.Errorf("panel should omit %s:\n%s", hidden, joined)
		}
	}
}

func TestPopulationPanel(t *testing.T) {
	p := NewPopulationPanel()
	if lines := p.Lines(40); len(lines) != 2 {
		t.Errorf("empty panel has %d lines, want 2", len(lines))
	}

	for i := 1; i <= 130; i++ {
		p.Update(telemetry.WindowStats{WindowEndTick: uint64(i * 100), Creatures: i, Plants: 2 * i})
	}

	s := p.Series(SeriesCreatures, 3)
	if len(s) != 3 || s[0] != 128 || s[2] != 130 {
		t.Errorf("Series = %v, want [128 129 130]", s)
	}
	if got := len(p.Series(SeriesPlants, 1000)); got != populationHistorySize {
		t.Errorf("Series length = %d, want %d", got, populationHistorySize)
	}

	before := len(p.Lines(40))
	p.Toggle(SeriesBirths)
	if after := len(p.Lines(40)); after != before+1 {
		t.Errorf("toggle added %d lines, want 1", after-before)
	}
}

func TestPerfLines(t *testing.T) {
	stats := telemetry.PerfStats{
		AvgTickDuration: 100 * time.Microsecond,
		TicksPerSecond:  10000,
		PhaseAvg: map[string]time.Duration{
			telemetry.PhasePathfinding: 60 * time.Microsecond,
			telemetry.PhaseIntents:     10 * time.Microsecond,
		},
		PhasePct: map[string]float64{
			telemetry.PhasePathfinding: 60,
			telemetry.PhaseIntents:     10,
		},
	}
	lines := PerfLines(stats, telemetry.NewStageRegistry())

	var intents, paths int = -1, -1
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l.Text, "Intents"):
			intents = i
			if l.Tone != ToneText {
				t.Errorf("Intents tone = %v, want text", l.Tone)
			}
		case strings.HasPrefix(l.Text, "Pathfinding"):
			paths = i
			if l.Tone != ToneLow {
				t.Errorf("Pathfinding tone = %v, want low (hot)", l.Tone)
			}
		case strings.HasPrefix(l.Text, "Lifecycle"):
			t.Error("phase without samples should be omitted")
		}
	}
	if intents < 0 || paths < 0 || intents > paths {
		t.Errorf("phases missing or out of pipeline order: intents=%d paths=%d", intents, paths)
	}
}
