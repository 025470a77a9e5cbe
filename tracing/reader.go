package tracing

import (
	"context"
	"fmt"

	"github.com/sarchlab/oceandist/comm"
	"github.com/sarchlab/oceandist/datarecording"
)

// A Trace is the communication of a recorded run.
type Trace struct {
	Ranks     []RankTraffic
	Total     Traffic
	Aborted   bool
	AbortCode int
}

// ReadTrace rebuilds the traffic of every rank from the tables that a
// DBTracer wrote. Collectives are counted when they end, as the
// TrafficCounter does.
func ReadTrace(
	ctx context.Context,
	reader datarecording.DataReader,
) (*Trace, error) {
	reader.MapTable(msgTable, msgEntry{})
	reader.MapTable(collectiveTable, collectiveEntry{})
	reader.MapTable(abortTable, abortEntry{})

	counter := NewTrafficCounter()

	msgs, _, err := reader.Query(ctx, msgTable, datarecording.QueryParams{})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", msgTable, err)
	}

	for _, row := range msgs {
		e := row.(*msgEntry)

		switch e.Kind {
		case "send":
			counter.rank(e.Src).Sent.addBytes(e.Bytes)
		case "recv":
			counter.rank(e.Dst).Received.addBytes(e.Bytes)
		}
	}

	colls, _, err := reader.Query(ctx, collectiveTable,
		datarecording.QueryParams{
			Where: "Pos = ?",
			Args:  []any{comm.HookPosCollectiveEnd.Name},
		})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collectiveTable, err)
	}

	for _, row := range colls {
		e := row.(*collectiveEntry)
		counter.rank(e.Rank).Collectives[e.Name]++
	}

	trace := &Trace{
		Ranks: counter.Ranks(),
		Total: counter.Total(),
	}

	aborts, _, err := reader.Query(ctx, abortTable,
		datarecording.QueryParams{OrderBy: "Time", Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abortTable, err)
	}

	if len(aborts) > 0 {
		trace.Aborted = true
		trace.AbortCode = aborts[0].(*abortEntry).Code
	}

	return trace, nil
}
