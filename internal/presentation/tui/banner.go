package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the lazychess banner to w.
func PrintBanner(w io.Writer, p termenv.Profile) {
	rows := []struct {
		text  string
		color string
	}{
		{" _                      _                   ", "#a3e635"},
		{"| | __ _ _____   _  ___| |__   ___  ___ ___ ", "#4ade80"},
		{"| |/ _` |_  / | | |/ __| '_ \\ / _ \\/ __/ __|", "#34d399"},
		{"| | (_| |/ /| |_| | (__| | | |  __/\\__ \\__ \\", "#2dd4bf"},
		{"|_|\\__,_/___|\\__, |\\___|_| |_|\\___||___/___/", "#22d3ee"},
		{"             |___/                          ", "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, r := range rows {
		fmt.Fprintln(w, p.String(r.text).Foreground(p.Color(r.color)))
	}
	fmt.Fprintln(w)
}
