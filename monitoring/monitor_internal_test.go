package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oceandist/comm"
	"github.com/sarchlab/oceandist/comm/inproc"
	"github.com/sarchlab/oceandist/tracing"
)

type sampleRankState struct {
	Rank  int
	Step  int
	Field *sampleField
}

type sampleField struct {
	Name  string
	Shape []int
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		world  *inproc.World
		server *httptest.Server
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		m.router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		m = NewMonitor()
		world = inproc.NewWorld(2)
		m.RegisterWorld(world)
		server = nil
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
		}
	})

	It("should fall back to a random port for reserved ports", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should report the world", func() {
		rec := get("/api/world")

		Expect(rec.Code).To(Equal(http.StatusOK))

		rsp := worldRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(Equal(worldRsp{Size: 2}))
	})

	It("should abort the world", func() {
		server = httptest.NewServer(m.router())

		rsp, err := http.Post(server.URL+"/api/abort?code=3", "", nil)
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))

		aborted, code := world.Aborted()
		Expect(aborted).To(BeTrue())
		Expect(code).To(Equal(3))
	})

	It("should reject an abort code that is not a number", func() {
		server = httptest.NewServer(m.router())

		rsp, err := http.Post(server.URL+"/api/abort?code=x", "", nil)
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusBadRequest))

		aborted, _ := world.Aborted()
		Expect(aborted).To(BeFalse())
	})

	It("should list registered ranks in order", func() {
		m.RegisterRank(1).Publish(&sampleRankState{Rank: 1})
		m.RegisterRank(0).Publish(&sampleRankState{Rank: 0})

		rec := get("/api/list_ranks")

		Expect(rec.Body.String()).To(Equal("[0,1]"))
	})

	It("should serialize the state of a rank", func() {
		m.RegisterRank(0).Publish(&sampleRankState{
			Rank:  0,
			Step:  4,
			Field: &sampleField{Name: "temp", Shape: []int{8, 8, 3}},
		})

		rec := get("/api/rank/0")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should return 404 for unknown ranks", func() {
		Expect(get("/api/rank/5").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/rank/x").Code).To(Equal(http.StatusNotFound))
	})

	It("should return 404 for a rank that has not published", func() {
		m.RegisterRank(0)

		Expect(get("/api/rank/0").Code).To(Equal(http.StatusNotFound))
	})

	It("should serve the latest snapshot while a rank publishes", func() {
		snapshot := m.RegisterRank(0)
		snapshot.Publish(&sampleRankState{Rank: 0})

		done := make(chan struct{})
		go func() {
			defer close(done)

			for step := 1; step <= 100; step++ {
				snapshot.Publish(&sampleRankState{
					Rank:  0,
					Step:  step,
					Field: &sampleField{Name: "temp", Shape: []int{4, 4, step}},
				})
			}
		}()

		for i := 0; i < 20; i++ {
			Expect(get("/api/rank/0").Code).To(Equal(http.StatusOK))
		}

		<-done

		Expect(snapshot.Load().(*sampleRankState).Step).To(Equal(100))
	})

	It("should report traffic", func() {
		counter := tracing.NewTrafficCounter()
		world.AcceptHook(counter)
		m.RegisterTraffic(counter)

		err := world.Run(func(c comm.Communicator) error {
			return c.Barrier()
		})
		Expect(err).NotTo(HaveOccurred())

		rec := get("/api/traffic/1")

		t := tracing.RankTraffic{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &t)).To(Succeed())
		Expect(t.Rank).To(Equal(1))
		Expect(t.Sent.Msgs).To(Equal(uint64(1)))
		Expect(t.Collectives).To(HaveKeyWithValue("barrier", 1))

		all := []tracing.RankTraffic{}
		Expect(json.Unmarshal(get("/api/traffic").Body.Bytes(), &all)).
			To(Succeed())
		Expect(all).To(HaveLen(2))
	})

	It("should answer 404 for traffic when no counter is registered", func() {
		Expect(get("/api/traffic/0").Code).To(Equal(http.StatusNotFound))
	})

	It("should create and complete progress bars", func() {
		bar1 := m.CreateProgressBar("steps", 10)
		bar2 := m.CreateProgressBar("gather", 4)
		Expect(bar1.ID).NotTo(Equal(bar2.ID))

		bar1.IncrementInProgress(2)
		bar1.MoveInProgressToFinished(1)

		bars := []map[string]any{}
		Expect(json.Unmarshal(get("/api/progress").Body.Bytes(), &bars)).
			To(Succeed())
		Expect(bars).To(HaveLen(2))
		Expect(bars[0]["finished"]).To(BeNumerically("==", 1))
		Expect(bars[0]["in_progress"]).To(BeNumerically("==", 1))

		m.CompleteProgressBar(bar1)

		Expect(m.progressBars).To(ConsistOf(bar2))
	})

	It("should serve the status page", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should start a server on a random port", func() {
		port := m.StartServer()

		Expect(port).To(BeNumerically(">", 0))
	})
})
