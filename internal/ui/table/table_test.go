package table

import (
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

type item struct {
	id   string
	name string
}

func itemTable() Model[item] {
	return New(Config[item]{
		Columns: []Column[item]{
			{Header: "ID", Width: 4, Render: func(r item, _ int) string { return r.id }},
			{Header: "Name", Render: func(r item, _ int) string { return r.name }},
		},
		EmptyMessage: "Nothing here",
		ZoneID:       func(r item) string { return "row:" + r.id },
	})
}

func TestNew_PanicsOnInvalidConfig(t *testing.T) {
	require.Panics(t, func() { New(Config[item]{}) })
	require.Panics(t, func() { New(Config[item]{Columns: []Column[item]{{Header: "x"}}}) })
	require.ErrorContains(t, ValidateConfig(Config[item]{Columns: []Column[item]{{Header: "x"}}}), `"x"`)
}

func TestView_Empty(t *testing.T) {
	v := itemTable().SetSize(40, 5).View(-1)
	require.Contains(t, v, "Nothing here")
}

func TestView_ZeroSize(t *testing.T) {
	require.Empty(t, itemTable().View(0))
}

func TestView_HeaderRowsAndSelection(t *testing.T) {
	m := itemTable().SetSize(30, 5).SetRows([]item{{"1", "Alice"}, {"2", "Bob"}})
	lines := strings.Split(zone.Scan(m.View(1)), "\n")

	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "ID")
	require.Contains(t, lines[0], "Name")
	require.True(t, strings.HasPrefix(lines[1], "  1"))
	require.Contains(t, lines[1], "Alice")
	require.Contains(t, lines[2], "▶")
	require.Contains(t, lines[2], "Bob")
	for _, l := range lines {
		require.LessOrEqual(t, lipgloss.Width(l), 30)
	}
}

func TestView_TruncatesLongCells(t *testing.T) {
	m := itemTable().SetSize(20, 3).SetRows([]item{{"1", strings.Repeat("x", 50)}})
	v := zone.Scan(m.View(-1))
	require.Contains(t, v, "...")
}

func TestView_MultiLineCellStaysOnOneRow(t *testing.T) {
	m := itemTable().SetSize(40, 5).SetRows([]item{{"1", "a\nb"}, {"2", "c\r\nd"}})
	lines := strings.Split(zone.Scan(m.View(-1)), "\n")

	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "a b")
	require.Contains(t, lines[2], "c d")
}

func TestEnsureVisible_Scrolls(t *testing.T) {
	rows := make([]item, 10)
	for i := range rows {
		rows[i] = item{id: string(rune('a' + i)), name: "n"}
	}
	m := itemTable().SetSize(20, 4).SetRows(rows) // three body rows

	m = m.EnsureVisible(5)
	require.Equal(t, 3, m.Offset())
	require.Contains(t, zone.Scan(m.View(5)), "f")

	m = m.EnsureVisible(1)
	require.Equal(t, 1, m.Offset())

	m = m.SetRows(rows[:2])
	require.Equal(t, 0, m.Offset(), "shrinking the rows clamps the offset")
}

func TestColumnWidths(t *testing.T) {
	cols := []Column[item]{
		{Width: 5},
		{},
		{MinWidth: 10},
	}
	w := columnWidths(cols, 30)
	require.Equal(t, []int{5, 12, 11}, w)

	narrow := columnWidths(cols, 12)
	require.Equal(t, 3, narrow[1], "flex columns never drop below three cells")
	require.Equal(t, 10, narrow[2], "MinWidth wins over the even share")
}
