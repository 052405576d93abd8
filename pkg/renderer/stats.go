package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// RenderStats describes the accumulation since the last restart
type RenderStats struct {
	Passes           int           `json:"passes"`
	SamplesPerPixel  int           `json:"samples_per_pixel"`
	RaysTraced       int64         `json:"rays_traced"` // Primary, shadow and continuation rays
	LastPass         time.Duration `json:"last_pass_ns"`
	TotalTime        time.Duration `json:"total_time_ns"`
	Width            int           `json:"width"`
	Height           int           `json:"height"`
	Workers          int           `json:"workers"`
	AverageLuminance float64       `json:"average_luminance"`
}

// RaysPerSecond returns the ray throughput over all passes
func (s RenderStats) RaysPerSecond() float64 {
	if s.TotalTime <= 0 {
		return 0
	}
	return float64(s.RaysTraced) / s.TotalTime.Seconds()
}

// AveragePass returns the mean pass duration
func (s RenderStats) AveragePass() time.Duration {
	if s.Passes == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Passes)
}

// Table writes the statistics as a two-column table
func (s RenderStats) Table(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Statistic", "Value"})
	table.Append([]string{"Image", fmt.Sprintf("%dx%d", s.Width, s.Height)})
	table.Append([]string{"Workers", fmt.Sprintf("%d", s.Workers)})
	table.Append([]string{"Passes", fmt.Sprintf("%d", s.Passes)})
	table.Append([]string{"Samples/pixel", fmt.Sprintf("%d", s.SamplesPerPixel)})
	table.Append([]string{"Rays traced", fmt.Sprintf("%d", s.RaysTraced)})
	table.Append([]string{"Rays/s", fmt.Sprintf("%.0f", s.RaysPerSecond())})
	table.Append([]string{"Avg. pass", s.AveragePass().String()})
	table.Append([]string{"Avg. luminance", fmt.Sprintf("%.4f", s.AverageLuminance)})
	table.SetFooter([]string{"Total time", s.TotalTime.String()})
	table.Render()
}
