// Package ui renders styled terminal output for status commands.
//
// A [Report] is a titled list of [Check] results. [Palette] maps each [Status] to a lipgloss style,
// and [Report.Render] lays the checks out in aligned columns with a summary line.
package ui
