package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/eventlog/internal/display"
	"github.com/jmylchreest/eventlog/internal/hittest"
	"github.com/jmylchreest/eventlog/internal/layout"
	"github.com/jmylchreest/eventlog/internal/model"
	"github.com/jmylchreest/eventlog/internal/theme"
)

// One terminal cell covers CellWidth x CellHeight surface units.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

// SurfaceSize returns the host surface size of a cols x rows grid.
func SurfaceSize(cols, rows int) hittest.Size {
	return hittest.Size{W: float64(cols) * CellWidth, H: float64(rows) * CellHeight}
}

// CellCenter returns the surface point at the center of cell (col, row).
func CellCenter(col, row int) hittest.Point {
	return hittest.Pt((float64(col)+0.5)*CellWidth, (float64(row)+0.5)*CellHeight)
}

// Canvas is a frame rasterized onto the terminal grid. Each cell is owned
// by the topmost region covering its center, or by the application.
type Canvas struct {
	cols, rows int
	runes      [][]rune
	owner      [][]int // index into regions, -1 for the application
	regions    []hittest.Region
	styles     []lipgloss.Style
}

// Paint rasterizes frame. It reads only the frame, so it may run on the UI
// loop and the result be rendered elsewhere.
func Paint(frame display.Frame, th *theme.Theme, scheme theme.Scheme, cols, rows int, now time.Time) *Canvas {
	c := &Canvas{
		cols:    cols,
		rows:    rows,
		runes:   make([][]rune, rows),
		owner:   make([][]int, rows),
		regions: hittest.Regions(frame.Root),
	}

	for row := 0; row < rows; row++ {
		c.runes[row] = []rune(strings.Repeat(" ", cols))
		c.owner[row] = make([]int, cols)
		for col := 0; col < cols; col++ {
			c.owner[row][col] = c.ownerAt(CellCenter(col, row))
		}
	}

	events := make(map[string]model.Event, len(frame.Snapshot.History))
	for _, ev := range frame.Snapshot.History {
		events[ev.ID] = ev
	}

	c.styles = make([]lipgloss.Style, len(c.regions))
	for i, r := range c.regions {
		ev := events[r.ID]
		c.styles[i] = regionStyle(r.Kind, ev, th, scheme)
		c.label(i, regionLabel(r, ev, len(frame.Snapshot.History), th, now))
	}
	return c
}

func (c *Canvas) ownerAt(p hittest.Point) int {
	for i := len(c.regions) - 1; i >= 0; i-- {
		if c.regions[i].Contains(p) {
			return i
		}
	}
	return -1
}

// label writes lines into the cells owned by region i, starting one cell in
// from its top-left visible cell.
func (c *Canvas) label(i int, lines []string) {
	top, left, ok := c.origin(i)
	if !ok {
		return
	}
	for n, line := range lines {
		row := top + n
		if row >= c.rows {
			return
		}
		col := left + 1
		for _, r := range line {
			if col >= c.cols {
				break
			}
			if c.owner[row][col] == i {
				c.runes[row][col] = r
			}
			col++
		}
	}
}

func (c *Canvas) origin(i int) (row, col int, ok bool) {
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			if c.owner[row][col] == i {
				return row, col, true
			}
		}
	}
	return 0, 0, false
}

// Owner returns the region drawn at cell (col, row).
func (c *Canvas) Owner(col, row int) (hittest.Region, bool) {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		return hittest.Region{}, false
	}
	i := c.owner[row][col]
	if i < 0 {
		return hittest.Region{}, false
	}
	return c.regions[i], true
}

// Text returns the unstyled characters of row.
func (c *Canvas) Text(row int) string {
	if row < 0 || row >= c.rows {
		return ""
	}
	return string(c.runes[row])
}

// Render composites the canvas over background, one string per row.
// Cells the overlay does not own show the background.
func (c *Canvas) Render(background []string) string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}

		var bg []rune
		if row < len(background) {
			bg = []rune(background[row])
		}

		col := 0
		for col < c.cols {
			owner := c.owner[row][col]
			start := col
			for col < c.cols && c.owner[row][col] == owner {
				col++
			}
			if owner < 0 {
				b.WriteString(backgroundRun(bg, start, col))
				continue
			}
			b.WriteString(c.styles[owner].Render(string(c.runes[row][start:col])))
		}
	}
	return b.String()
}

func backgroundRun(bg []rune, from, to int) string {
	run := make([]rune, to-from)
	for i := range run {
		run[i] = ' '
		if from+i < len(bg) {
			run[i] = bg[from+i]
		}
	}
	return string(run)
}

func regionStyle(kind hittest.Kind, ev model.Event, th *theme.Theme, scheme theme.Scheme) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch kind {
	case layout.KindCard:
		return base.Background(lipgloss.Color(th.Tint(ev.Category, scheme))).Foreground(lipgloss.Color("0"))
	case layout.KindPeek:
		return base.Background(lipgloss.Color("8")).Foreground(lipgloss.Color("15"))
	case layout.KindScrim:
		return base.Background(lipgloss.Color("236")).Foreground(lipgloss.Color("244"))
	case layout.KindCollapse, layout.KindClose:
		return base.Background(lipgloss.Color("15")).Foreground(lipgloss.Color("0")).Bold(true)
	case layout.KindDetail:
		return base.Background(lipgloss.Color("235")).Foreground(lipgloss.Color("15"))
	default:
		return base
	}
}

func regionLabel(r hittest.Region, ev model.Event, total int, th *theme.Theme, now time.Time) []string {
	switch r.Kind {
	case layout.KindCard:
		lines := []string{fmt.Sprintf("%s %s  %s", th.Style(ev.Category).Glyph, ev.Title, humanize.RelTime(ev.CreatedAt, now, "ago", "from now"))}
		if ev.HasMessage() {
			lines = append(lines, "  "+ev.MessageTruncated(int(r.Bounds.Dx()/CellWidth)-4))
		}
		return lines
	case layout.KindPeek:
		return []string{fmt.Sprintf("▾ %s %s", humanize.Comma(int64(total)), plural(total, "event", "events"))}
	case layout.KindCollapse:
		return []string{"▴"}
	case layout.KindClose:
		return []string{"✕"}
	case layout.KindDetail:
		lines := []string{
			fmt.Sprintf("%s %s", th.Style(ev.Category).Glyph, ev.Title),
			fmt.Sprintf("%s · %s", ev.Category, humanize.RelTime(ev.CreatedAt, now, "ago", "from now")),
			"",
		}
		return append(lines, strings.Split(ev.Message, "\n")...)
	default:
		return nil
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
