package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const maxWrapWidth = 120

// printMarkdown renders through glamour when stdout is a terminal and
// prints the raw text otherwise.
func printMarkdown(text string) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		fmt.Println(text)
		return
	}

	width := 80
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = min(w, maxWrapWidth)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		fmt.Println(text)
		return
	}
	out, err := renderer.Render(text)
	if err != nil {
		fmt.Println(text)
		return
	}
	fmt.Print(out)
}
