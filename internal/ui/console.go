package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/wisnuprasetya/gamedex/internal/api"
)

// Color palette shared by all console output
var (
	green  = lipgloss.Color("82")
	yellow = lipgloss.Color("220")
	cyan   = lipgloss.Color("86")
	red    = lipgloss.Color("196")
)

var (
	successStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(red).Bold(true)
	waitStyle    = lipgloss.NewStyle().Foreground(yellow)
	summaryStyle = lipgloss.NewStyle().Foreground(cyan)
	titleStyle   = lipgloss.NewStyle().Foreground(cyan).Bold(true)
)

// PrintTitle prints the tool banner line
func PrintTitle(title string) {
	fmt.Println(titleStyle.Render(title))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(successStyle.Render(message))
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(errorStyle.Render("Error: " + message))
}

// PrintCountdown prints one countdown line during a quota or backoff wait
func PrintCountdown(message string, remaining time.Duration) {
	fmt.Println(waitStyle.Render(fmt.Sprintf("%s (%s remaining)", message, api.FormatCountdown(remaining))))
}

// PrintProgress prints an in-place progress line during enrichment
func PrintProgress(done, total int, name string) {
	fmt.Printf("\r%s", waitStyle.Render(fmt.Sprintf("Resolving release dates... %d/%d (%s)", done, total, name)))
	if done == total {
		fmt.Println()
	}
}

// PrintSummary prints the final resolved/not-found/skipped counts
func PrintSummary(total, resolved, notFound, skipped int) {
	fmt.Println(summaryStyle.Render(fmt.Sprintf(
		"Summary: %d games, %d resolved, %d without a release date, %d skipped",
		total, resolved, notFound, skipped)))
}
