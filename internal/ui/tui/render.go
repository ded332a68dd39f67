package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"topic-quiz-service/internal/view"
)

type styles struct {
	title    lipgloss.Style
	subtle   lipgloss.Style
	err      lipgloss.Style
	notice   lipgloss.Style
	selected lipgloss.Style
	cursor   lipgloss.Style
	correct  lipgloss.Style
	wrong    lipgloss.Style
	box      lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			title:    plain.Bold(true),
			subtle:   plain,
			err:      plain.Bold(true),
			notice:   plain.Italic(true),
			selected: plain.Bold(true),
			cursor:   plain,
			correct:  plain,
			wrong:    plain,
			box:      plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
		}
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		subtle:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
		notice:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true),
		cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		correct:  lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
		wrong:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
	}
}

// View renders the page for the current screen.
func (m Model) View() string {
	st := newStyles(m.noColor)
	var body string
	switch {
	case m.page.Home != nil:
		body = m.renderHome(st)
	case m.page.Loading != nil:
		body = m.renderLoading(st)
	case m.page.Quiz != nil:
		body = m.renderQuiz(st)
	case m.page.Results != nil:
		body = m.renderResults(st)
	}
	parts := []string{st.title.Render("My Quiz App"), body}
	if m.notice != "" {
		parts = append(parts, st.notice.Render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m Model) renderHome(st styles) string {
	home := m.page.Home
	lines := []string{st.title.Render(home.Title), st.subtle.Render(home.Intro), ""}
	if home.Error != "" {
		lines = append(lines, st.err.Render(home.Error), "")
	}
	for i, topic := range home.Topics {
		marker := "  "
		name := topic.Name
		if i == m.cursor {
			marker = st.cursor.Render("> ")
			name = st.selected.Render(name)
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", marker, name, st.subtle.Render(topic.Note)))
	}
	lines = append(lines, "", m.input.View(), "",
		st.subtle.Render(fmt.Sprintf("tab: pick a topic • enter: %s • esc: quit", strings.ToLower(home.StartLabel))))
	return strings.Join(lines, "\n")
}

func (m Model) renderLoading(st styles) string {
	loading := m.page.Loading
	msg := view.LoadingMessage(m.now.Sub(m.loadingSince))
	return strings.Join([]string{
		"",
		m.spinner.View() + " " + st.title.Render(loading.Headline),
		st.subtle.Render(msg),
		"",
		st.subtle.Render("esc: back home"),
	}, "\n")
}

func (m Model) renderQuiz(st styles) string {
	quiz := m.page.Quiz
	header := fmt.Sprintf("%s  %s", st.subtle.Render(quiz.Counter), st.selected.Render(fmt.Sprintf("%d%%", quiz.Progress)))
	lines := []string{header, m.bar.ViewAs(float64(quiz.Progress) / 100), "", st.title.Render(quiz.Question), ""}
	for i, opt := range quiz.Options {
		marker := "  "
		if i == m.cursor {
			marker = st.cursor.Render("> ")
		}
		text := fmt.Sprintf("%s. %s", opt.Label, opt.Text)
		if opt.Selected {
			text = st.selected.Render(text + " ✓")
		}
		lines = append(lines, marker+text)
	}
	advance := quiz.AdvanceLabel
	if !quiz.CanAdvance {
		advance = st.subtle.Render(advance)
	}
	lines = append(lines, "", fmt.Sprintf("[enter] %s", advance),
		st.subtle.Render("a-d or space: choose • esc: quit quiz"))
	return strings.Join(lines, "\n")
}

func (m Model) renderResults(st styles) string {
	res := m.page.Results
	lines := []string{
		st.title.Render(res.Title),
		res.Text,
		"",
		st.box.Render(fmt.Sprintf("%d%%  Correct %d  Mistakes %d", res.Percent, res.Correct, res.Mistakes)),
		renderChart(res.Chart, max(m.width-10, 10), st),
		"",
		st.subtle.Render(res.ReviewHeading),
	}
	for _, item := range res.Review {
		mark := st.correct.Render("✓")
		if !item.Correct {
			mark = st.wrong.Render("✗")
		}
		lines = append(lines, fmt.Sprintf("%s %s", mark, item.Question))
		lines = append(lines, fmt.Sprintf("    %s: %s", item.YourChoiceLabel, item.YourChoice))
		if item.RightOne != "" {
			lines = append(lines, fmt.Sprintf("    %s: %s", item.RightOneLabel, st.correct.Render(item.RightOne)))
		}
	}
	lines = append(lines, "", st.subtle.Render(fmt.Sprintf("enter: %s • q: quit", strings.ToLower(res.RestartLabel))))
	return strings.Join(lines, "\n")
}

// renderChart draws the correct/wrong split as one horizontal bar.
func renderChart(segments []view.ChartSegment, width int, st styles) string {
	total := 0
	for _, s := range segments {
		total += s.Value
	}
	if total == 0 {
		return ""
	}
	var sb strings.Builder
	used := 0
	for i, s := range segments {
		n := s.Value * width / total
		if i == len(segments)-1 {
			n = width - used
		}
		used += n
		style := st.correct
		if s.Name != "Correct" {
			style = st.wrong
		}
		sb.WriteString(style.Render(strings.Repeat("█", n)))
	}
	return sb.String()
}
