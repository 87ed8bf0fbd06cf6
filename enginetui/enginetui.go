// Package enginetui renders a live termbox status board for a graph.Graph:
// one row per node showing its type and lifecycle status, refreshed on a
// fixed tick alongside keyboard navigation.
package enginetui

import (
	"fmt"
	"time"

	"github.com/nsf/termbox-go"

	"audiograph/graph"
)

const (
	colDef    = termbox.ColorDefault
	colWhite  = termbox.ColorWhite
	colGreen  = termbox.ColorGreen
	colYellow = termbox.ColorYellow
	colCyan   = termbox.ColorCyan
)

// Board holds the TUI's navigation state over a graph.
type Board struct {
	g        *graph.Graph
	selected int
	exit     bool
}

// Run initializes termbox and drives the board until the user quits or ctx
// deadline passes. It blocks.
func Run(g *graph.Graph, refresh time.Duration) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("enginetui: termbox init: %w", err)
	}
	defer termbox.Close()

	termbox.SetInputMode(termbox.InputEsc)

	board := &Board{g: g}

	eventQueue := make(chan termbox.Event)
	go func() {
		for {
			eventQueue <- termbox.PollEvent()
		}
	}()

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	draw(board)

	for !board.exit {
		select {
		case ev := <-eventQueue:
			switch ev.Type {
			case termbox.EventKey:
				handleKey(ev, board)
			case termbox.EventResize:
				draw(board)
			}
		case <-ticker.C:
			draw(board)
		}
	}
	return nil
}

func handleKey(ev termbox.Event, b *Board) {
	if ev.Key == termbox.KeyEsc || ev.Ch == 'q' {
		b.exit = true
		return
	}

	n := b.g.NumNodes()
	if n == 0 {
		return
	}

	switch ev.Key {
	case termbox.KeyArrowUp:
		b.selected--
		if b.selected < 0 {
			b.selected = n - 1
		}
	case termbox.KeyArrowDown:
		b.selected++
		if b.selected >= n {
			b.selected = 0
		}
	}
}

func statusName(s int32) string {
	switch s {
	case graph.StatusInit:
		return "init"
	case graph.StatusReady:
		return "ready"
	case graph.StatusProcessed:
		return "processed"
	default:
		return "unknown"
	}
}

func statusColor(s int32) termbox.Attribute {
	switch s {
	case graph.StatusProcessed:
		return colGreen
	case graph.StatusReady:
		return colYellow
	default:
		return colWhite
	}
}

func draw(b *Board) {
	_ = termbox.Clear(colDef, colDef)

	printTB(0, 0, colCyan, colDef, "Graph Status Board")
	printTB(0, 1, colDef, colDef, "Use Up/Down to select a node. 'q' or Esc to quit.")
	printTB(0, 2, colDef, colDef, "----------------------------------------------------")

	n := b.g.NumNodes()
	for i := 0; i < n; i++ {
		node, err := b.g.Node(graph.NodeHandle(i))
		if err != nil {
			continue
		}

		prefix := "  "
		if i == b.selected {
			prefix = "> "
		}

		status := node.Status().Load()
		line := fmt.Sprintf("%s%3d: %-30T %s", prefix, i, node, statusName(status))
		printTB(0, 4+i, statusColor(status), colDef, line)
	}

	termbox.Flush()
}

func printTB(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x++
	}
}
