package cmd

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/oceandist/datarecording"
	"github.com/sarchlab/oceandist/tracing"
)

var trafficCmd = &cobra.Command{
	Use:   "traffic <trace.sqlite3>",
	Short: "Print the traffic of every rank of a recorded run.",
	Long: "`traffic` reads a database written by `run --trace-db` and " +
		"prints what every rank sent, received, and which collectives it " +
		"joined.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		trace, err := tracing.ReadTrace(cmd.Context(), reader)
		if err != nil {
			return err
		}

		return printTrace(cmd, trace)
	},
}

func init() {
	rootCmd.AddCommand(trafficCmd)
}

func printTrace(cmd *cobra.Command, trace *tracing.Trace) error {
	out := cmd.OutOrStdout()

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSENT\tSENT BYTES\tRECEIVED\tRECEIVED BYTES\tCOLLECTIVES")

	for _, r := range trace.Ranks {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%s\n",
			r.Rank, r.Sent.Msgs, r.Sent.Bytes,
			r.Received.Msgs, r.Received.Bytes,
			formatCollectives(r.Collectives))
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "traffic: %d msgs, %d bytes\n",
		trace.Total.Msgs, trace.Total.Bytes)

	if trace.Aborted {
		fmt.Fprintf(out, "aborted with code %d\n", trace.AbortCode)
	}

	return nil
}

func formatCollectives(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}

	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, counts[name])
	}

	if len(parts) == 0 {
		return "-"
	}

	return strings.Join(parts, " ")
}
