package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/oceandist/config"
	"github.com/sarchlab/oceandist/datarecording"
	"github.com/sarchlab/oceandist/driver"
	"github.com/sarchlab/oceandist/monitoring"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: "`run` steps the model on every rank of a process grid. Settings " +
		"are read from OCEANDIST_ environment variables and an optional " +
		".env file; flags take precedence.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadSettings(cmd.Flags())
		if err != nil {
			return err
		}

		logger := s.NewLogger(os.Stderr)

		b := driver.MakeBuilder().
			WithSettings(s).
			WithLogger(logger)

		if s.TraceDB != "" {
			recorder := datarecording.New(s.TraceDB)
			defer recorder.Close()

			b = b.WithRecorder(recorder)
		}

		if s.Monitor {
			m := monitoring.NewMonitor().
				WithPortNumber(s.MonitorPort).
				WithBrowser(s.OpenBrowser)
			m.StartServer()

			b = b.WithMonitor(m)
		}

		d, err := b.Build()
		if err != nil {
			return err
		}

		report, err := d.Run()
		if err != nil {
			logger.Error("run failed", "error", err)
			return err
		}

		printReport(cmd, report)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.String("env-file", "", "Load settings from this file instead of .env")
	f.Int("nx", 0, "Number of grid points in x")
	f.Int("ny", 0, "Number of grid points in y")
	f.Int("nz", 0, "Number of vertical levels")
	f.Int("px", 0, "Number of processes in x")
	f.Int("py", 0, "Number of processes in y")
	f.Bool("distributed", false, "Run on more than one rank")
	f.Int("steps", 0, "Number of steps")
	f.String("trace-db", "", "Record the run into this SQLite database")
	f.Bool("monitor", false, "Start the monitoring server")
	f.Int("monitor-port", 0, "Port of the monitoring server")
	f.Bool("open-browser", false, "Open the monitoring page in a browser")
	f.String("log-level", "", "One of debug, info, warn, error")
	f.String("log-format", "", "Either text or json")
}

// loadSettings reads the environment and applies the flags that were set.
func loadSettings(flags *pflag.FlagSet) (config.Settings, error) {
	var files []string
	if envFile, _ := flags.GetString("env-file"); envFile != "" {
		files = append(files, envFile)
	}

	s, err := config.Load(files...)
	if err != nil {
		return s, err
	}

	ints := map[string]*int{
		"nx":           &s.NX,
		"ny":           &s.NY,
		"nz":           &s.NZ,
		"px":           &s.PX,
		"py":           &s.PY,
		"steps":        &s.Steps,
		"monitor-port": &s.MonitorPort,
	}
	for name, dst := range ints {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	bools := map[string]*bool{
		"distributed":  &s.Distributed,
		"monitor":      &s.Monitor,
		"open-browser": &s.OpenBrowser,
	}
	for name, dst := range bools {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}

	strs := map[string]*string{
		"trace-db":   &s.TraceDB,
		"log-level":  &s.LogLevel,
		"log-format": &s.LogFormat,
	}
	for name, dst := range strs {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}

	return s, nil
}

func printReport(cmd *cobra.Command, r *driver.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "ranks: %d\n", r.Ranks)
	fmt.Fprintf(out, "elapsed: %s\n", r.Elapsed)
	fmt.Fprintf(out, "traffic: %d msgs, %d bytes\n",
		r.Traffic.Msgs, r.Traffic.Bytes)

	for _, s := range r.Stats {
		fmt.Fprintf(out,
			"step %4d  max %10.5f  min %10.5f  heat %.6e  zonal %.6e\n",
			s.Step, s.MaxTemp, s.MinTemp, s.Heat, s.MaxZonalHeat)
	}
}

func exitCode(err error) int {
	var nanErr *driver.NaNError
	if errors.As(err, &nanErr) {
		return driver.ExitCodeNaN
	}

	return 1
}
