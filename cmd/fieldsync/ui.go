package main

import "github.com/charmbracelet/lipgloss"

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	mutedStyle = lipgloss.NewStyle().Faint(true)
)

func renderPass(s string) string  { return passStyle.Render(s) }
func renderFail(s string) string  { return failStyle.Render(s) }
func renderWarn(s string) string  { return warnStyle.Render(s) }
func renderMuted(s string) string { return mutedStyle.Render(s) }
