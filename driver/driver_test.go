package driver_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oceandist/comm"
	"github.com/sarchlab/oceandist/config"
	"github.com/sarchlab/oceandist/datarecording"
	"github.com/sarchlab/oceandist/decomp"
	"github.com/sarchlab/oceandist/driver"
	"github.com/sarchlab/oceandist/field"
	"github.com/sarchlab/oceandist/monitoring"
)

func settings(px, py int, distributed bool) config.Settings {
	s := config.Default()
	s.NX, s.NY, s.NZ = 12, 8, 5
	s.PX, s.PY = px, py
	s.Distributed = distributed
	s.Steps = 4

	return s
}

func run(b driver.Builder) (*driver.Report, error) {
	logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))

	d, err := b.WithLogger(logger).Build()
	Expect(err).NotTo(HaveOccurred())

	return d.Run()
}

var _ = Describe("Driver", func() {
	It("should reject invalid settings", func() {
		_, err := driver.MakeBuilder().
			WithSettings(settings(2, 1, false)).
			Build()

		var configErr *decomp.ConfigurationError
		Expect(errors.As(err, &configErr)).To(BeTrue())
	})

	It("should run a single process", func() {
		report, err := run(driver.MakeBuilder().
			WithSettings(settings(1, 1, false)))

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Ranks).To(Equal(1))
		Expect(report.Stats).To(HaveLen(4))
		Expect(report.Final.Shape()).To(Equal([]int{16, 12, 5}))
		Expect(report.Traffic.Msgs).To(BeZero())
	})

	It("should conserve heat and not create new extremes", func() {
		report, err := run(driver.MakeBuilder().
			WithSettings(settings(2, 2, true)))
		Expect(err).NotTo(HaveOccurred())

		first := report.Stats[0]
		for _, s := range report.Stats[1:] {
			Expect(s.Heat).To(BeNumerically("~", first.Heat,
				1e-9*math.Abs(first.Heat)))
			Expect(s.MaxTemp).To(BeNumerically("<=", first.MaxTemp+1e-12))
			Expect(s.MinTemp).To(BeNumerically(">=", first.MinTemp-1e-12))
		}
	})

	DescribeTable("should match a single-process run",
		func(px, py int) {
			reference, err := run(driver.MakeBuilder().
				WithSettings(settings(1, 1, false)))
			Expect(err).NotTo(HaveOccurred())

			report, err := run(driver.MakeBuilder().
				WithSettings(settings(px, py, true)))
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Ranks).To(Equal(px * py))
			Expect(field.Identical(report.Final, reference.Final)).To(BeTrue())

			for i, s := range report.Stats {
				ref := reference.Stats[i]
				Expect(s.Step).To(Equal(ref.Step))
				Expect(s.MaxTemp).To(Equal(ref.MaxTemp))
				Expect(s.MinTemp).To(Equal(ref.MinTemp))
				Expect(s.Heat).To(BeNumerically("~", ref.Heat,
					1e-9*math.Abs(ref.Heat)))
				Expect(s.MaxZonalHeat).To(BeNumerically("~", ref.MaxZonalHeat,
					1e-9*math.Abs(ref.MaxZonalHeat)))
			}
		},
		Entry("one distributed rank", 1, 1),
		Entry("a row of ranks", 3, 1),
		Entry("a column of ranks", 1, 2),
		Entry("a grid of ranks", 2, 2),
	)

	It("should abort every rank when one rank sees NaN", func() {
		_, err := run(driver.MakeBuilder().
			WithSettings(settings(2, 2, true)).
			WithPerturbation(func(rank, step int, temp *field.Field) {
				if rank == 3 && step == 2 {
					temp.Set(math.NaN(), 3, 3, 4)
				}
			}))

		var nanErr *driver.NaNError
		Expect(errors.As(err, &nanErr)).To(BeTrue())
		Expect(*nanErr).To(Equal(driver.NaNError{Rank: 3, Step: 2}))
		Expect(errors.Is(err, comm.ErrAborted)).To(BeTrue())
	})

	It("should record diagnostics and communication", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")
		recorder := datarecording.New(path)
		defer recorder.Close()

		_, err := run(driver.MakeBuilder().
			WithSettings(settings(2, 1, true)).
			WithRecorder(recorder))
		Expect(err).NotTo(HaveOccurred())

		Expect(recorder.ListTables()).To(ContainElements(
			"comm_msg", "comm_collective", "comm_abort", "step_stats"))

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable("step_stats", driver.StepStats{})
		rows, total, err := reader.Query(context.Background(), "step_stats",
			datarecording.QueryParams{OrderBy: "Step"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(4))
		Expect(rows[3].(*driver.StepStats).Step).To(Equal(4))
	})

	It("should report progress to a monitor", func() {
		m := monitoring.NewMonitor()

		report, err := run(driver.MakeBuilder().
			WithSettings(settings(2, 1, true)).
			WithMonitor(m))

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Traffic.Msgs).To(BeNumerically(">", 0))

		port := m.StartServer()
		base := fmt.Sprintf("http://localhost:%d", port)

		Expect(getBody(base + "/api/list_ranks")).To(Equal("[0,1]"))
		Expect(getBody(base + "/api/rank/1")).NotTo(BeEmpty())
	})
})

func getBody(url string) string {
	rsp, err := http.Get(url)
	Expect(err).NotTo(HaveOccurred())
	defer rsp.Body.Close()

	Expect(rsp.StatusCode).To(Equal(http.StatusOK))

	body, err := io.ReadAll(rsp.Body)
	Expect(err).NotTo(HaveOccurred())

	return string(body)
}
