package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	labelName    = "Food"
	labelPeople  = "People"
	labelCalorie = "Calorie"
	loadingText  = "Analyzing photo..."
)

// Catppuccin Mocha
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPink)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorOverlay1)
	labelStyle   = lipgloss.NewStyle().Foreground(colorLavender).Width(9)
	valueStyle   = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	calorieStyle = lipgloss.NewStyle().Foreground(colorPeach).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(colorGreen)
	infoBox      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1).Padding(0, 1)
	noticeStyle  = lipgloss.NewStyle().Foreground(colorText).Background(colorRed).Padding(0, 1)
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("My Food Calorie"))
	b.WriteString(mutedStyle.Render("  [" + a.backend + "]"))
	b.WriteString("\n\n")
	b.WriteString(a.renderPhoto())
	b.WriteString("\n")

	if a.ui.InfoVisible {
		b.WriteString(a.renderInfo())
		b.WriteString("\n")
	}
	if v := a.indicator.View(); v != "" {
		b.WriteString(v)
		b.WriteString("\n")
	}
	if a.picker.IsOpen() {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(a.picker.Dir()))
		b.WriteString("\n")
		b.WriteString(a.picker.View())
		b.WriteString("\n")
	}
	if a.notice.text != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(a.notice.text))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(a.help.View(a.keys))
	return b.String()
}

func (a *App) renderPhoto() string {
	if a.file == nil {
		return mutedStyle.Render("No photo yet. Press o to pick one.")
	}
	line := valueStyle.Render(a.file.Name)
	if a.preview != "" {
		line += mutedStyle.Render("  " + a.preview)
	}
	return line
}

func (a *App) renderInfo() string {
	rows := []string{
		labelStyle.Render(labelName) + valueStyle.Render(a.ui.FoodName),
		labelStyle.Render(labelPeople) + valueStyle.Render(a.ui.FoodPeople),
		labelStyle.Render(labelCalorie) + calorieStyle.Render(fmt.Sprintf("%s kcal", a.ui.FoodCalorie)),
	}
	return infoBox.Render(strings.Join(rows, "\n"))
}
