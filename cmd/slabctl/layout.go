package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// layout is a set of Pot parameters, in bytes.
type layout struct {
	Region int
	Max    int
	Min    int
}

// presets are named layouts accepted by --preset.
var presets = map[string]layout{
	"small":   {Region: 1 << 12, Max: 64, Min: 4},
	"default": {Region: 1 << 16, Max: 256, Min: 8},
	"mesh":    {Region: 1 << 24, Max: 1 << 16, Min: 64},
}

func presetNames() string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

func lookupPreset(name string) (layout, error) {
	l, ok := presets[name]
	if !ok {
		return layout{}, fmt.Errorf("unknown preset %q (want one of %s)", name, presetNames())
	}
	return l, nil
}

// addLayoutFlags registers --preset, --region, --max and --min on cmd.
func addLayoutFlags(cmd *cobra.Command, preset *string, l *layout) {
	def := presets["default"]
	cmd.Flags().StringVar(preset, "preset", "default", "Named layout: "+presetNames())
	cmd.Flags().IntVar(&l.Region, "region", def.Region, "Region size in bytes (power of two)")
	cmd.Flags().IntVar(&l.Max, "max", def.Max, "Largest class and slab size (power of two)")
	cmd.Flags().IntVar(&l.Min, "min", def.Min, "Smallest class (power of two)")
}

// overrideLayout replaces fields of base with flags the user set explicitly.
func overrideLayout(cmd *cobra.Command, base layout, flags layout) layout {
	if cmd.Flags().Changed("region") {
		base.Region = flags.Region
	}
	if cmd.Flags().Changed("max") {
		base.Max = flags.Max
	}
	if cmd.Flags().Changed("min") {
		base.Min = flags.Min
	}
	return base
}
