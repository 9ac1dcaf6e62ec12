package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"mediabuddy/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var statusStyles = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// Labels are padded so messages line up in a column.
const labelWidth = 20

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

// renderStatusLine formats "  Label:   [KIND] message".
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	st, ok := statusStyles[kind]
	if !ok {
		st = statusStyles[statusInfo]
	}
	tag := "[" + st.label + "]"
	if message != "" {
		tag += " " + message
	}
	return paint(fmt.Sprintf("  %-*s %s", labelWidth, label+":", tag), st.color, colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	return []string{
		paint(heading, ansiBlue, colorize),
		paint(strings.Repeat("-", len(heading)), ansiBlue, colorize),
	}
}

// checkLines renders preflight results, one line each.
func checkLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		kind := statusError
		if r.Passed {
			kind = statusOK
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}

// shouldColorize reports whether w is an interactive terminal.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
