// Package viz renders contact models and cost scans for the terminal.
//
//   - [Summary]: sizes, clusters and Delassus estimates of a built model
//   - [Canvas]: Braille pixel canvas used by the explorer
//   - [PlotScan]: asciigraph plot of the cost along a line
//
// Colors come from a [Theme]; [NewStyles] derives the lipgloss styles used
// by every renderer.
package viz
