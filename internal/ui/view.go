package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"marquee/internal/media"
)

// View renders the current screen with the status and help footer.
func (m *Model) View() string {
	var body string
	switch m.view {
	case searchView:
		body = m.searchBody()
	case resultsView:
		body = m.resultsBody()
	case posterView:
		body = m.posterBody()
	case detailView:
		body = m.detailBody()
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	if m.status != "" {
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(metaStyle.Render(m.status))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.help(m.view)))
	return b.String()
}

func (m *Model) header() string {
	h := headerStyle.Render("marquee")
	if m.term != "" {
		h += "  " + metaStyle.Render(fmt.Sprintf("%q · %d results", m.term, m.set.Len()))
	}
	return h
}

func (m *Model) searchBody() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	// The highlighted suggestion is the one tab inserts next.
	for i, s := range m.suggestions {
		b.WriteString("\n")
		if i == m.suggestIdx%len(m.suggestions) {
			b.WriteString(suggestionStyle.Inherit(selectedStyle).Render(s))
			continue
		}
		b.WriteString(suggestionStyle.Render(s))
	}
	return b.String()
}

func (m *Model) resultsBody() string {
	items := m.set.Items()
	if len(items) == 0 {
		switch {
		case m.loading():
			return m.spinner.View() + " Loading..."
		case m.searched:
			return metaStyle.Render("No results.")
		default:
			return metaStyle.Render("Press / to search.")
		}
	}

	var b strings.Builder
	end := min(m.offset+m.cardsPerScreen(), len(items))
	for i := m.offset; i < end; i++ {
		b.WriteString(card(items[i], i == m.cursor))
		b.WriteString("\n")
	}
	if m.loading() {
		b.WriteString(m.spinner.View() + " Loading...")
	}
	return b.String()
}

// card is the two-line rendering of one result.
func card(mv media.Movie, selected bool) string {
	title := fmt.Sprintf("%s (%s)", mv.Title, mv.Year)
	if selected {
		title = selectedStyle.Render("▸ " + title)
	} else {
		title = "  " + title
	}
	meta := metaStyle.Render(fmt.Sprintf("  %s · %s", strings.ToUpper(mv.Type.String()), mv.IMDbID))
	return title + "\n" + meta
}

func (m *Model) posterBody() string {
	mv := m.selected
	poster := mv.PosterOrPlaceholder()
	if w := m.width - 12; w > 10 && len(poster) > w {
		poster = poster[:w-1] + "…"
	}

	dialog := dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		metaStyle.Render(poster),
		"",
		titleStyle.Render(mv.Title),
		metaStyle.Render(fmt.Sprintf("%s • %s", mv.Year, strings.ToUpper(mv.Type.String()))),
		"",
		selectedStyle.Render("[enter] View Info"),
	))
	if m.width == 0 || m.height == 0 {
		return dialog
	}
	return lipgloss.Place(m.width, max(m.height-chromeLines, lipgloss.Height(dialog)),
		lipgloss.Center, lipgloss.Center, dialog)
}

func (m *Model) detailBody() string {
	if m.detailErr != nil {
		return errorStyle.Render("Could not load details: " + m.detailErr.Error())
	}
	d := m.detail
	if d == nil {
		return m.spinner.View() + " Loading..."
	}

	width := 80
	if m.width > 0 && m.width < width {
		width = m.width
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", d.Title, d.Year)))
	b.WriteString("\n")
	b.WriteString(metaStyle.Render(strings.Join(nonEmpty(d.Rated, d.Runtime, d.Genre), " • ")))
	b.WriteString("\n")

	if len(d.Ratings) > 0 {
		chips := make([]string, 0, len(d.Ratings))
		for _, r := range d.Ratings {
			chips = append(chips, chipStyle.Render(r.Source+": "+r.Value))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
		b.WriteString("\n")
	}

	if d.Plot != "" && d.Plot != media.NotAvailable {
		b.WriteString(lipgloss.NewStyle().Width(width).Render(d.Plot))
		b.WriteString("\n\n")
	}

	for _, f := range d.Fields() {
		value := f.Value
		if value == "" || value == media.NotAvailable {
			continue
		}
		if f.Label == "IMDb Rating" {
			value += " ⭐"
		}
		b.WriteString(labelStyle.Render(f.Label+":") + " " + value)
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render("Poster:") + " " + d.Movie().PosterOrPlaceholder())
	return b.String()
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" && v != media.NotAvailable {
			out = append(out, v)
		}
	}
	return out
}
