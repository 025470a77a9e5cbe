package tracing

import (
	"sync"
	"time"

	"github.com/sarchlab/oceandist/comm"
	"github.com/sarchlab/oceandist/datarecording"
)

const (
	msgTable        = "comm_msg"
	collectiveTable = "comm_collective"
	abortTable      = "comm_abort"
)

type msgEntry struct {
	ID      string
	Kind    string
	Context uint64
	Src     int
	Dst     int
	Tag     int
	TagName string
	Bytes   int
	Time    float64
}

type collectiveEntry struct {
	Name    string
	Pos     string
	Context uint64
	Rank    int
	Size    int
	Op      string
	Len     int
	Time    float64
}

type abortEntry struct {
	Code int
	Time float64
}

// DBTracer is a hook that writes every message, collective call, and abort
// to a DataRecorder. Times are seconds since the tracer was created.
type DBTracer struct {
	lock    sync.Mutex
	backend datarecording.DataRecorder
	start   time.Time
	now     func() time.Time
	enabled bool
}

// NewDBTracer creates a tracer and the tables it writes to.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		backend: backend,
		now:     time.Now,
		enabled: true,
	}
	t.start = t.now()

	backend.CreateTable(msgTable, msgEntry{})
	backend.CreateTable(collectiveTable, collectiveEntry{})
	backend.CreateTable(abortTable, abortEntry{})

	return t
}

// StartTracing resumes recording.
func (t *DBTracer) StartTracing() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.enabled = true
}

// StopTracing pauses recording. Records that arrive while paused are
// dropped.
func (t *DBTracer) StopTracing() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.enabled = false
}

// IsTracing reports whether records are being written.
func (t *DBTracer) IsTracing() bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.enabled
}

// Func records the item carried by the hook context.
func (t *DBTracer) Func(ctx comm.HookCtx) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.enabled {
		return
	}

	now := t.now().Sub(t.start).Seconds()

	switch ctx.Pos {
	case comm.HookPosMsgSend, comm.HookPosMsgRecv:
		msg := ctx.Item.(*comm.Msg)

		kind := "send"
		if ctx.Pos == comm.HookPosMsgRecv {
			kind = "recv"
		}

		t.backend.InsertData(msgTable, msgEntry{
			ID:      msg.ID,
			Kind:    kind,
			Context: msg.Context,
			Src:     msg.Src,
			Dst:     msg.Dst,
			Tag:     msg.Tag,
			TagName: comm.TagName(msg.Tag),
			Bytes:   msg.TrafficBytes(),
			Time:    now,
		})
	case comm.HookPosCollectiveStart, comm.HookPosCollectiveEnd:
		coll := ctx.Item.(comm.Collective)

		t.backend.InsertData(collectiveTable, collectiveEntry{
			Name:    coll.Name,
			Pos:     ctx.Pos.Name,
			Context: coll.Context,
			Rank:    worldRank(ctx.Domain, coll.Rank),
			Size:    coll.Size,
			Op:      coll.Op.String(),
			Len:     coll.Len,
			Time:    now,
		})
	case comm.HookPosAbort:
		t.backend.InsertData(abortTable, abortEntry{
			Code: ctx.Item.(int),
			Time: now,
		})
	}
}
