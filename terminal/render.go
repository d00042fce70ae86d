package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/voidgrid/game/engine"
)

const (
	boardTop  = 2
	boardLeft = 2
	cellWidth = 2
)

type glyph struct {
	r     rune
	style tcell.Style
}

var (
	styleText  = tcell.StyleDefault
	styleTitle = tcell.StyleDefault.Bold(true)
	styleDim   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleWon   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleLost  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleError = tcell.StyleDefault.Foreground(tcell.ColorOrange)
)

var tileGlyphs = map[string]glyph{
	engine.TileEmpty:        {' ', tcell.StyleDefault},
	engine.TileNormal:       {'.', styleDim},
	engine.TileWall:         {'#', tcell.StyleDefault.Foreground(tcell.ColorSilver)},
	engine.TileStairs:       {'>', tcell.StyleDefault.Foreground(tcell.ColorGreen)},
	engine.TileSwitch:       {'_', tcell.StyleDefault.Foreground(tcell.ColorTeal)},
	engine.TileGlass:        {'+', tcell.StyleDefault.Foreground(tcell.ColorAqua)},
	engine.TileDamagedGlass: {'x', tcell.StyleDefault.Foreground(tcell.ColorAqua)},
	engine.TileBomb:         {'*', tcell.StyleDefault.Foreground(tcell.ColorOrange)},
	engine.TileExplo:        {'%', tcell.StyleDefault.Foreground(tcell.ColorRed)},
	engine.TileCopy:         {'c', tcell.StyleDefault.Foreground(tcell.ColorPurple)},
	engine.TileWhite:        {':', tcell.StyleDefault.Foreground(tcell.ColorWhite)},
	engine.TileRod:          {'/', tcell.StyleDefault.Foreground(tcell.ColorFuchsia)},
	engine.TileSword:        {'|', tcell.StyleDefault.Foreground(tcell.ColorFuchsia)},
	engine.TileWings:        {'v', tcell.StyleDefault.Foreground(tcell.ColorFuchsia)},
}

var entityGlyphs = map[string]rune{
	engine.EntityPlayer:  '@',
	engine.EntityRock:    'O',
	engine.EntityLeech:   'l',
	engine.EntityMaggot:  'm',
	engine.EntitySmile:   'S',
	engine.EntityBeaver:  'B',
	engine.EntityLazyEye: 'e',
	engine.EntityMimic:   'M',
	engine.EntityMimicV:  'M',
	engine.EntityMimicH:  'M',
	engine.EntityMimicVH: 'M',
	engine.EntityShade:   '&',
	engine.EntityVoider:  'V',
	engine.EntityLover:   'L',
	engine.EntitySmiler:  's',
	engine.EntityGreeder: 'G',
	engine.EntityKiller:  'K',
	engine.EntitySlower:  'w',
	engine.EntityWatcher: 'W',
	engine.EntityAtoner:  'A',
}

// Renderer draws snapshots onto a screen
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer creates a renderer for an initialized screen
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Draw clears the screen and renders the board with its counters, the
// outcome and an optional status message
func (r *Renderer) Draw(title string, snap engine.Snapshot, status string) {
	r.screen.Clear()

	r.text(boardLeft, 0, styleTitle, title)

	for row := 0; row < snap.Height; row++ {
		for col := 0; col < snap.Width; col++ {
			g := cellGlyph(snap, snap.Cell(row, col))
			r.screen.SetContent(boardLeft+col*cellWidth, boardTop+row, g.r, nil, g.style)
		}
	}

	y := boardTop + snap.Height + 1
	r.text(boardLeft, y, styleText, counters(snap))
	y++
	r.text(boardLeft, y, styleText, exitLine(snap))
	y++

	switch snap.Outcome {
	case engine.Won:
		r.text(boardLeft, y, styleWon, fmt.Sprintf("You won in %d turns. r to restart, q to quit", snap.Turns))
	case engine.Lost:
		r.text(boardLeft, y, styleLost, "You lost. r to restart, q to quit")
	default:
		r.text(boardLeft, y, styleDim, "arrows move, space acts, r restarts, q quits")
	}
	y++

	if status != "" {
		r.text(boardLeft, y, styleError, status)
	}

	r.screen.Show()
}

func (r *Renderer) text(x, y int, style tcell.Style, s string) {
	for _, ch := range s {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

// cellGlyph picks what to show for a cell: the top entity if there is one,
// the tile otherwise. Closed stairs are dimmed.
func cellGlyph(snap engine.Snapshot, cell engine.CellView) glyph {
	if n := len(cell.Entities); n > 0 {
		ent := cell.Entities[n-1]
		ch, ok := entityGlyphs[ent.Name]
		if !ok {
			ch = '?'
		}
		return glyph{r: ch, style: entityStyle(ent)}
	}

	g, ok := tileGlyphs[cell.Tile]
	if !ok {
		return glyph{r: '?', style: styleError}
	}
	if cell.Tile == engine.TileStairs && snap.StairsClosed {
		g.style = styleDim
	}
	return g
}

func entityStyle(ent engine.EntityView) tcell.Style {
	switch {
	case ent.Name == engine.EntityPlayer:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	case ent.Kind == engine.KindEnemy:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case ent.Pushable:
		return tcell.StyleDefault.Foreground(tcell.ColorSilver)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorBlue)
	}
}

func counters(snap engine.Snapshot) string {
	line := fmt.Sprintf("turns %d  steps %d  voids %d  wings %d/%d",
		snap.Turns, snap.Steps, snap.Voids, snap.WingsUsed, snap.Wings)
	if snap.Stock != "" {
		line += "  holding " + snap.Stock
	}
	if snap.HasRod {
		line += "  rod"
	}
	if snap.HasSword {
		line += "  sword"
	}
	return line
}

func exitLine(snap engine.Snapshot) string {
	exit := "open"
	if snap.StairsClosed {
		exit = "closed"
	}
	line := "exit " + exit
	if snap.Watchers > 0 {
		line += fmt.Sprintf("  watchers %d/%d", snap.WatcherVoids, snap.Watchers)
	}
	return line
}
