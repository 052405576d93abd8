package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/urfave/cli"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// Info prints the host resources the renderer will use.
func Info(ctx *cli.Context) error {
	setupLogging(ctx)

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Resource", "Value"})

	if infos, err := cpu.Info(); err != nil || len(infos) == 0 {
		logger.Warningf("could not query CPU information: %v", err)
	} else {
		table.Append([]string{"CPU", infos[0].ModelName})
		table.Append([]string{"Clock", fmt.Sprintf("%.2f GHz", infos[0].Mhz/1000)})
	}
	if physical, err := cpu.Counts(false); err == nil {
		table.Append([]string{"Physical cores", fmt.Sprintf("%d", physical)})
	}
	if vm, err := mem.VirtualMemory(); err != nil {
		logger.Warningf("could not query memory information: %v", err)
	} else {
		table.Append([]string{"Memory", fmt.Sprintf("%.1f GiB", float64(vm.Total)/(1<<30))})
		table.Append([]string{"Available", fmt.Sprintf("%.1f GiB", float64(vm.Available)/(1<<30))})
	}
	table.Append([]string{"Built-in scenes", fmt.Sprintf("%v", scene.BuiltinNames())})
	table.SetFooter([]string{"Render workers", fmt.Sprintf("%d", renderer.DefaultWorkerCount())})
	table.Render()
	return nil
}
