package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pgrunwald/svgpie/pkg/chart/palette"
)

// palettesCommand creates the palettes command showing the built-in colors.
func (c *CLI) palettesCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "palettes",
		Short: "Show the built-in color palette",
		Long: `Palettes prints the default category colors as terminal swatches.
The first ten colors are a fixed qualitative palette; beyond that, colors
are derived by rotating the hue of the base palette. Use --count to see
how derived colors continue the sequence.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be positive")
			}

			fmt.Println(StyleTitle.Render("Default palette"))
			scale, err := palette.NewDerived(nil)
			if err != nil {
				return err
			}
			for i := 0; i < count; i++ {
				hex, err := scale.ColorOf(fmt.Sprintf("category-%d", i))
				if err != nil {
					return err
				}
				printSwatch(i, hex)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", len(palette.Default), "number of colors to show")
	return cmd
}

// printSwatch prints one palette entry as a colored block plus its hex code.
func printSwatch(idx int, hex string) {
	block := lipgloss.NewStyle().
		Background(lipgloss.Color("#" + hex)).
		Render("    ")
	fmt.Printf("  %2d %s %s\n", idx, block, StyleValue.Render("#"+hex))
}
