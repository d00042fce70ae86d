package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/level"
	"github.com/wricardo/voidgrid/game/service"
)

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nLevel: %s (%s)\nCreated: %s\nLast used: %s\n",
		session.ID, session.LevelName, session.LevelID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.LastAccessedAt.Format("2006-01-02 15:04:05"))
	if session.State != nil {
		result += "\n" + formatSnapshot(session.State)
	}
	return result
}

// formatBoard renders the board as level code rows, entities over tiles
func formatBoard(state *engine.Snapshot) string {
	tiles, entities, err := level.Rows(*state)
	if err != nil {
		return fmt.Sprintf("(board unavailable: %v)\n", err)
	}

	var sb strings.Builder
	sb.WriteString("     ")
	for c := 0; c < state.Width; c++ {
		sb.WriteString(fmt.Sprintf("%-4d", c))
	}
	sb.WriteString("\n")

	for r := range tiles {
		tileRow := level.SplitRow(tiles[r])
		entityRow := level.SplitRow(entities[r])
		sb.WriteString(fmt.Sprintf("%3d  ", r))
		for c := range tileRow {
			code := tileRow[c]
			if entityRow[c] != level.NoEntity {
				code = "*" + entityRow[c]
			}
			sb.WriteString(fmt.Sprintf("%-4s", code))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatSnapshot(state *engine.Snapshot) string {
	var sb strings.Builder

	sb.WriteString(formatBoard(state))
	sb.WriteString("(* marks an entity standing on the cell; use describe_cell for the tile beneath)\n\n")

	if state.PlayerAlive {
		sb.WriteString(fmt.Sprintf("Player: (%d,%d) facing %s\n",
			state.PlayerPosition.Row, state.PlayerPosition.Col, state.PlayerFacing))
	} else {
		sb.WriteString("Player: gone\n")
	}
	sb.WriteString(fmt.Sprintf("Turns: %d | Steps: %d | Voids: %d\n", state.Turns, state.Steps, state.Voids))

	stock := state.Stock
	if stock == "" {
		stock = "nothing"
	}
	sb.WriteString(fmt.Sprintf("Holding: %s | Rod: %v | Sword: %v | Wings: %d/%d used\n",
		stock, state.HasRod, state.HasSword, state.WingsUsed, state.Wings))

	exit := "open"
	if state.StairsClosed {
		exit = "closed"
	}
	sb.WriteString(fmt.Sprintf("Stairs: %s", exit))
	if state.WatcherAlert() {
		sb.WriteString(" | WATCHERS ALERTED")
	}
	sb.WriteString("\n")

	switch state.Outcome {
	case engine.Won:
		sb.WriteString("\n🎉 LEVEL CLEARED\n")
	case engine.Lost:
		sb.WriteString("\n💀 LEVEL LOST - reset to try again\n")
	}

	return sb.String()
}

func formatPlayResult(result *service.PlayResult) string {
	var sb strings.Builder

	status := "OK"
	if result.Cancelled {
		status = "CANCELLED"
	}
	sb.WriteString(fmt.Sprintf("%s: %s\n", result.Choice, status))

	if step := result.Step; step != nil {
		sb.WriteString(fmt.Sprintf("Step: (%d,%d) -> (%d,%d) on %s\n",
			step.From.Row, step.From.Col, step.To.Row, step.To.Col, step.Tile))
	}
	if result.Message != "" {
		sb.WriteString(result.Message + "\n")
	}
	for _, ev := range result.Events {
		if ev.Type == "turn" {
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s\n", ev.Message))
	}

	if result.State != nil {
		sb.WriteString("\n" + formatSnapshot(result.State))
	}
	return sb.String()
}

func formatStepLine(step service.StepInfo) string {
	mark := ""
	switch {
	case step.Cancelled:
		mark = " (cancelled)"
	case step.Voided:
		mark = " (void)"
	case !step.Moved:
		mark = " (stayed)"
	}
	line := fmt.Sprintf("%2d. %-6s (%d,%d) -> (%d,%d) %s%s",
		step.Idx, step.Choice, step.From.Row, step.From.Col, step.To.Row, step.To.Col, step.Tile, mark)
	if step.Outcome != engine.Playing {
		line += " => " + strings.ToUpper(string(step.Outcome))
	}
	return line
}

func formatBulkPlayResult(sessionID string, result *service.BulkPlayResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Session %s: executed %d/%d choices\n",
		sessionID, result.ChoicesExecuted, result.RequestedChoices))
	if result.Truncated {
		sb.WriteString(fmt.Sprintf("Only the first %d choices were played\n", result.Limit))
	}
	if result.StoppedReason != "" {
		sb.WriteString(fmt.Sprintf("Stopped on choice %d: %s [%s]\n",
			result.StoppedOnChoice, result.StoppedReason, result.StopReasonCode))
	}
	sb.WriteString(fmt.Sprintf("Player: (%d,%d) -> (%d,%d)\n",
		result.StartPosition.Row, result.StartPosition.Col, result.EndPosition.Row, result.EndPosition.Col))

	if len(result.Steps) > 0 {
		sb.WriteString("\nSteps:\n")
		for _, step := range result.Steps {
			sb.WriteString(formatStepLine(step) + "\n")
		}
	}

	if result.State != nil {
		sb.WriteString("\n" + formatSnapshot(result.State))
	}
	return sb.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Turn History (page %d/%d, %d turns total):\n\n",
		history.Page, history.TotalPages, history.TotalTurns))

	for _, t := range history.Turns {
		mark := ""
		if t.Cancelled {
			mark = " (cancelled)"
		}
		sb.WriteString(fmt.Sprintf("%3d. %-6s (%d,%d) -> (%d,%d)%s",
			t.Turn, t.Choice, t.From.Row, t.From.Col, t.To.Row, t.To.Col, mark))
		if t.Outcome != engine.Playing {
			sb.WriteString(" => " + strings.ToUpper(string(t.Outcome)))
		}
		sb.WriteString("\n")
	}

	if history.HasNext {
		sb.WriteString(fmt.Sprintf("\nMore turns on page %d\n", history.Page+1))
	}
	return sb.String()
}

func formatCell(cell *service.CellInfo) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Cell (%d,%d): %s\n", cell.Row, cell.Col, cell.Summary))
	sb.WriteString(fmt.Sprintf("Tile: %s", cell.Tile))
	if cell.Obstacle {
		sb.WriteString(" (obstacle)")
	}
	sb.WriteString("\n")

	if len(cell.Entities) == 0 {
		sb.WriteString("Entities: none\n")
		return sb.String()
	}
	sb.WriteString("Entities (oldest first):\n")
	for _, e := range cell.Entities {
		line := fmt.Sprintf("- #%d %s (%s", e.ID, e.Name, e.Kind)
		if e.Facing != "" {
			line += ", facing " + string(e.Facing)
		}
		if e.Pushable {
			line += ", pushable"
		}
		sb.WriteString(line + ")\n")
	}
	return sb.String()
}

func instructions() string {
	var sb strings.Builder

	sb.WriteString(`Void Grid - Complete Instructions

OBJECTIVE:
Step onto the stairs (E) while they are open. The stairs stay closed while
a switch (S) is uncovered or held. Falling into a hole or being caught by an
enemy ends the level.

EACH TURN:
• Choose Up, Down, Left, Right or Action
• Moving into a pushable object pushes it one cell if the cell behind is free;
  you stay in place on a push
• Walking into enemies kills them
• Action uses the cell you are facing: with the sword (Vs) it strikes the
  enemies there; with the void rod (Vr) it picks up the floor tile, or drops
  the held tile into a hole. An invalid Action cancels the turn
• Then every enemy, object and rule agent reacts in a fixed order, so the same
  choices always give the same result

TILES:
• Glass cracks when first stepped on and breaks when left while cracked
• Bombs arm when occupied and then blow up every connected armed bomb
• Copy pads spawn a shade that follows you one step behind
• Item markers (Vr, Vs, Vw) grant their item while they are on the board;
  each wings marker absorbs one fall
• Watchers (Wa) notice rod use; once the alert reaches the number of
  watchers the player dies

BOARD FORMAT:
Cells are shown as level codes. A code prefixed with * is an entity; the
tile under it is shown by describe_cell. Rows and columns are 0-based from
the top left.

`)

	sb.WriteString("TILE CODES:\n")
	for _, c := range level.TileCodes() {
		sb.WriteString(fmt.Sprintf("  %-4s %s\n", c.Code, c.Label))
	}
	sb.WriteString("\nENTITY CODES:\n")
	for _, c := range level.EntityCodes() {
		sb.WriteString(fmt.Sprintf("  %-4s %s\n", c.Code, c.Label))
	}

	sb.WriteString(`
STRATEGY TIPS:
• Use game_state before planning and describe_cell for stacked cells
• Cancelled turns change nothing, so bulk_play stops on them
• Use reset_game or reset=true to try again after losing`)

	return sb.String()
}
