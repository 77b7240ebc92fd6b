package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const bannerDefaultWidth = 60

// PrintBanner renders a box-drawing banner around a title using the default width.
func PrintBanner(title string) {
	fmt.Print(renderBanner(title, bannerDefaultWidth))
}

// renderBanner draws the banner. The box grows when the title does not fit.
func renderBanner(title string, width int) string {
	if width < 10 {
		width = bannerDefaultWidth
	}

	inner := width - 2
	if n := utf8.RuneCountInString(title) + 2; n > inner {
		inner = n
	}

	edge := strings.Repeat("═", inner)
	var b strings.Builder
	fmt.Fprintf(&b, "╔%s╗\n", edge)
	fmt.Fprintf(&b, "║%s║\n", padCenter(title, inner))
	fmt.Fprintf(&b, "╚%s╝\n", edge)
	return b.String()
}

func padCenter(text string, width int) string {
	n := utf8.RuneCountInString(text)
	if n >= width {
		return string([]rune(text)[:width])
	}
	padTotal := width - n
	left := padTotal / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", padTotal-left)
}
