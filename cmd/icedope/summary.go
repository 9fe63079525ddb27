package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

// row is one key/value line of a summary box.
type row struct {
	key   string
	value string
}

func kv(key string, value any) row {
	return row{key: key, value: fmt.Sprint(value)}
}

// summary renders a titled box of key/value rows.
func summary(w io.Writer, title string, rows ...row) {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, titleStyle.Render(title))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			keyStyle.Render(r.key), valueStyle.Render(r.value)))
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

// rejections formats a reason->count map in a stable order.
func rejections(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}

// ids formats a site list, eliding the middle of long lists.
func ids(sites []int) string {
	if len(sites) == 0 {
		return "-"
	}
	const max = 12
	if len(sites) <= max {
		return strings.Trim(fmt.Sprint(sites), "[]")
	}
	head := strings.Trim(fmt.Sprint(sites[:max-2]), "[]")
	return fmt.Sprintf("%s ... %d (%d total)", head, sites[len(sites)-1], len(sites))
}

func failure(w io.Writer, msg string) {
	fmt.Fprintln(w, failStyle.Render(msg))
}
