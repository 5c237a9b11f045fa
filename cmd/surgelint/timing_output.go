package main

import (
	"fmt"
	"io"

	"surgelint/internal/driver"
)

func printTimings(out io.Writer, outcome driver.Outcome) {
	if out == nil {
		return
	}
	for _, phase := range outcome.Timings.Phases {
		line := fmt.Sprintf("%s %.1f ms", phase.Name, phase.DurationMS)
		if phase.Note != "" {
			line += " (" + phase.Note + ")"
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "wall %.1f ms, %d checked, %d cached, %d fixed\n",
		outcome.Timings.WallMS, outcome.Checked, outcome.Cached, outcome.Fixed)
}
