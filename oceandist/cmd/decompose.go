package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/oceandist/decomp"
	"github.com/sarchlab/oceandist/field"
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose",
	Short: "Print how a domain is split across a process grid.",
	Long: "`decompose --nx 8 --ny 8 --px 2 --py 2` prints the position, " +
		"the neighbors, and the chunk of every rank.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadSettings(cmd.Flags())
		if err != nil {
			return err
		}

		return printDecomposition(cmd, s.NX, s.NY, s.PX, s.PY)
	},
}

func init() {
	rootCmd.AddCommand(decomposeCmd)

	f := decomposeCmd.Flags()
	f.String("env-file", "", "Load settings from this file instead of .env")
	f.Int("nx", 0, "Number of grid points in x")
	f.Int("ny", 0, "Number of grid points in y")
	f.Int("px", 0, "Number of processes in x")
	f.Int("py", 0, "Number of processes in y")
}

func printDecomposition(cmd *cobra.Command, nx, ny, px, py int) error {
	n := px * py
	grid := []decomp.Dim{decomp.XT, decomp.YT}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tINDEX\tGLOBAL\tLOCAL\tNEIGHBORS")

	for rank := 0; rank < n; rank++ {
		d, err := decomp.New(nx, ny, px, py, n, rank)
		if err != nil {
			return err
		}

		global, local := d.ChunkSlices(grid, d.Index(), true)

		fmt.Fprintf(w, "%d\t(%d, %d)\t%s\t%s\t%s\n",
			rank, d.Index().X, d.Index().Y,
			formatRegion(global), formatRegion(local),
			formatNeighbors(d.Neighbors()))
	}

	return w.Flush()
}

func formatRegion(region []field.Range) string {
	parts := make([]string, len(region))
	for i, r := range region {
		parts[i] = r.String()
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func formatNeighbors(neighbors [decomp.NumDirections]int) string {
	parts := []string{}
	for dir, rank := range neighbors {
		if rank == decomp.NoRank {
			continue
		}

		parts = append(parts,
			fmt.Sprintf("%s=%d", decomp.Direction(dir), rank))
	}

	if len(parts) == 0 {
		return "-"
	}

	return strings.Join(parts, " ")
}
