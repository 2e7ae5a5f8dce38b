package renderer

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WriteReport prints the render summary the CLI shows after a render
// completes, a direct generalization of the teacher's fmt.Printf
// summary block in main.go — locale-aware thousands separators via
// golang.org/x/text/message instead of a hand-rolled digit grouper.
func WriteReport(w io.Writer, s Stats) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "rendered %d x %d px, %d spp\n", s.Width, s.Height, s.SamplesPerPixel)
	p.Fprintf(w, "%d pixels, %d samples total, %.2f samples/pixel avg\n",
		s.TotalPixels, s.TotalSamples, s.AverageSamples)
	p.Fprintf(w, "completed in %s\n", formatDuration(s.Elapsed))
}

func formatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.2fs", seconds)
	}
	m := int(seconds) / 60
	s := seconds - float64(m*60)
	return fmt.Sprintf("%dm%.1fs", m, s)
}
