package tracing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/oceandist/comm"
	"github.com/sarchlab/oceandist/comm/inproc"
)

var _ = Describe("TrafficCounter", func() {
	It("should count the traffic of every rank of a world", func() {
		w := inproc.NewWorld(3)
		counter := NewTrafficCounter()
		w.AcceptHook(counter)

		err := w.Run(func(c comm.Communicator) error {
			if c.Rank() == 0 {
				if err := c.Send(make([]float64, 4), 2, 0); err != nil {
					return err
				}
			}

			if c.Rank() == 2 {
				if err := c.Recv(make([]float64, 4), 0, 0); err != nil {
					return err
				}
			}

			return c.Barrier()
		})
		Expect(err).NotTo(HaveOccurred())

		r0, found := counter.Rank(0)
		Expect(found).To(BeTrue())
		Expect(r0.Sent).To(Equal(Traffic{Msgs: 3, Bytes: 32}))
		Expect(r0.Received).To(Equal(Traffic{Msgs: 2}))
		Expect(r0.Collectives).To(HaveKeyWithValue("barrier", 1))

		r2, _ := counter.Rank(2)
		Expect(r2.Received).To(Equal(Traffic{Msgs: 2, Bytes: 32}))

		Expect(counter.Ranks()).To(HaveLen(3))
		Expect(counter.Total()).To(Equal(Traffic{Msgs: 5, Bytes: 32}))

		_, found = counter.Rank(7)
		Expect(found).To(BeFalse())
	})

	It("should attribute sub-group collectives to world ranks", func() {
		w := inproc.NewWorld(4)
		counter := NewTrafficCounter()
		w.AcceptHook(counter)

		err := w.Run(func(c comm.Communicator) error {
			sub, err := c.Split(c.Rank()/2, c.Rank())
			if err != nil {
				return err
			}
			defer func() { _ = sub.Free() }()

			_, err = sub.Allreduce([]float64{1}, comm.OpSum)

			return err
		})
		Expect(err).NotTo(HaveOccurred())

		for rank := 0; rank < 4; rank++ {
			t, _ := counter.Rank(rank)
			Expect(t.Collectives).To(Equal(map[string]int{
				"split": 1, "allreduce": 1,
			}))
		}
	})
})

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockDataRecorder
		tracer   *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)

		backend.EXPECT().CreateTable(msgTable, msgEntry{})
		backend.EXPECT().CreateTable(collectiveTable, collectiveEntry{})
		backend.EXPECT().CreateTable(abortTable, abortEntry{})

		tracer = NewDBTracer(backend)

		start := tracer.start
		tracer.now = func() time.Time { return start.Add(2 * time.Second) }
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record messages", func() {
		msg := comm.MsgBuilder{}.
			WithID("7").
			WithSrc(1).
			WithDst(2).
			WithTag(comm.ReduceTag).
			WithData([]float64{1, 2}).
			Build()

		backend.EXPECT().InsertData(msgTable, msgEntry{
			ID:      "7",
			Kind:    "recv",
			Src:     1,
			Dst:     2,
			Tag:     comm.ReduceTag,
			TagName: "allreduce",
			Bytes:   16,
			Time:    2,
		})

		tracer.Func(comm.HookCtx{Pos: comm.HookPosMsgRecv, Item: msg})
	})

	It("should record collectives and aborts", func() {
		backend.EXPECT().InsertData(collectiveTable, collectiveEntry{
			Name: "allreduce",
			Pos:  "Collective Start",
			Rank: 3,
			Size: 4,
			Op:   "MAX",
			Len:  1,
			Time: 2,
		})
		backend.EXPECT().InsertData(abortTable, abortEntry{Code: 5, Time: 2})

		tracer.Func(comm.HookCtx{
			Pos: comm.HookPosCollectiveStart,
			Item: comm.Collective{
				Name: "allreduce", Rank: 3, Size: 4, Op: comm.OpMax, Len: 1,
			},
		})
		tracer.Func(comm.HookCtx{Pos: comm.HookPosAbort, Item: 5})
	})

	It("should drop records while stopped", func() {
		tracer.StopTracing()
		Expect(tracer.IsTracing()).To(BeFalse())

		tracer.Func(comm.HookCtx{Pos: comm.HookPosAbort, Item: 1})

		tracer.StartTracing()
		Expect(tracer.IsTracing()).To(BeTrue())
	})
})
