package engine

import (
	"errors"
	"reflect"
	"testing"
)

func TestGridConversion(t *testing.T) {
	g := Grid{Width: 4, Height: 3}

	tests := []struct {
		index int
		pos   Position
	}{
		{0, Position{0, 0}},
		{3, Position{0, 3}},
		{4, Position{1, 0}},
		{11, Position{2, 3}},
	}

	for _, tt := range tests {
		if got := g.ToPosition(tt.index); got != tt.pos {
			t.Errorf("ToPosition(%d) = %+v, want %+v", tt.index, got, tt.pos)
		}
		if got := g.ToIndex(tt.pos); got != tt.index {
			t.Errorf("ToIndex(%+v) = %d, want %d", tt.pos, got, tt.index)
		}
	}

	if g.Size() != 12 {
		t.Errorf("Expected size 12, got %d", g.Size())
	}
	if g.Contains(Position{3, 0}) || g.Contains(Position{0, -1}) {
		t.Error("Expected out-of-board positions to be rejected")
	}
}

func TestGridStep(t *testing.T) {
	g := Grid{Width: 3, Height: 3}

	tests := []struct {
		name   string
		index  int
		dir    Direction
		want   int
		wantOK bool
	}{
		{"up from top row", 1, Up, 0, false},
		{"up from middle", 4, Up, 1, true},
		{"down from bottom row", 7, Down, 0, false},
		{"down from middle", 4, Down, 7, true},
		{"left from first column", 3, Left, 0, false},
		{"left from middle", 4, Left, 3, true},
		{"right from last column", 5, Right, 0, false},
		{"right from middle", 4, Right, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.Step(tt.index, tt.dir)
			if ok != tt.wantOK {
				t.Fatalf("Step(%d, %s) ok = %v, want %v", tt.index, tt.dir, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Step(%d, %s) = %d, want %d", tt.index, tt.dir, got, tt.want)
			}
		})
	}
}

func TestGridNeighbors(t *testing.T) {
	g := Grid{Width: 3, Height: 3}

	if got, want := g.Neighbors(4), []int{3, 5, 7, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors(4) = %v, want %v", got, want)
	}
	if got, want := g.Neighbors(0), []int{1, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors(0) = %v, want %v", got, want)
	}
	if got, want := g.Neighbors(8), []int{7, 5}; !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors(8) = %v, want %v", got, want)
	}
}

func TestOppositeAndDelta(t *testing.T) {
	for _, d := range Directions {
		dr, dc := Delta(d)
		or, oc := Delta(Opposite(d))
		if dr != -or || dc != -oc {
			t.Errorf("Delta(%s) and Delta(Opposite) are not inverse", d)
		}
		if Opposite(Opposite(d)) != d {
			t.Errorf("Opposite is not an involution for %s", d)
		}
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input   string
		want    Choice
		wantErr bool
	}{
		{"up", ChoiceUp, false},
		{"Down", ChoiceDown, false},
		{" LEFT ", ChoiceLeft, false},
		{"r", ChoiceRight, false},
		{"action", ChoiceAction, false},
		{"void", ChoiceAction, false},
		{"jump", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseChoice(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownChoice) {
					t.Fatalf("Expected ErrUnknownChoice, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseChoice(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}
