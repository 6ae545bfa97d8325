package main

import (
	"fmt"
	"sort"

	"github.com/arzan03/ConsultCMS/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the store with demo content",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		count, _ := cmd.Flags().GetInt("count")
		seedValue, _ := cmd.Flags().GetInt64("seed")

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.close(ctx)

		summary, err := seed.NewFactory(rt.resources, seed.Options{Count: count, Seed: seedValue}, rt.log).Run(ctx)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(summary))
		for name := range summary {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %d\n", name, summary[name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntP("count", "n", 10, "Records per content resource")
	seedCmd.Flags().Int64("seed", 0, "Random seed for reproducible content")
}
