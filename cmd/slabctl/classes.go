package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/slabkit/mem"
	"github.com/joshuapare/slabkit/suballoc"
)

var (
	classesPreset string
	classesLayout layout
)

func init() {
	rootCmd.AddCommand(newClassesCmd())
}

func newClassesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Show the slab and class layout of a configuration",
		Long: `The classes command shows how a region is cut into slabs and which
allocation classes a slab can serve, for a power-of-two configuration.

Example:
  slabctl classes
  slabctl classes --region 1048576 --max 4096 --min 16
  slabctl classes --preset mesh --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses(cmd)
		},
	}
	addLayoutFlags(cmd, &classesPreset, &classesLayout)
	return cmd
}

type classLayout struct {
	Class        int `json:"class"`
	SlotsPerSlab int `json:"slots_per_slab"`
	MaxSlots     int `json:"max_slots"`
}

type layoutReport struct {
	Region    int           `json:"region"`
	SlabSize  int           `json:"slab_size"`
	SlabCount int           `json:"slab_count"`
	Classes   []classLayout `json:"classes"`
}

func runClasses(cmd *cobra.Command) error {
	base, err := lookupPreset(classesPreset)
	if err != nil {
		return err
	}
	l := overrideLayout(cmd, base, classesLayout)
	printVerbose("Layout: region=%d max=%d min=%d\n", l.Region, l.Max, l.Min)

	cfg, err := suballoc.Pot(mem.NewRange[byte](0, l.Region), l.Max, l.Min)
	if err != nil {
		return err
	}

	rep := layoutReport{
		Region:    cfg.Region().Size,
		SlabSize:  cfg.SlabSize(),
		SlabCount: cfg.SlabCount(),
	}
	for _, class := range cfg.Classes() {
		slots := cfg.SlotsPerSlab(class)
		rep.Classes = append(rep.Classes, classLayout{
			Class:        class,
			SlotsPerSlab: slots,
			MaxSlots:     slots * cfg.SlabCount(),
		})
	}

	if jsonOut {
		return printJSON(rep)
	}

	printInfo("Region:     %d bytes\n", rep.Region)
	printInfo("Slab size:  %d bytes\n", rep.SlabSize)
	printInfo("Slabs:      %d\n", rep.SlabCount)
	printInfo("\n%10s %14s %14s\n", "CLASS", "SLOTS/SLAB", "MAX SLOTS")
	for _, c := range rep.Classes {
		printInfo("%10d %14d %14d\n", c.Class, c.SlotsPerSlab, c.MaxSlots)
	}
	return nil
}
