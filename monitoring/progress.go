package monitoring

import (
	"encoding/json"
	"sync"
	"time"
)

// A ProgressBar tracks how many units of work, such as the steps of all
// ranks, are done.
type ProgressBar struct {
	lock       sync.Mutex
	ID         string
	Name       string
	StartTime  time.Time
	Total      uint64
	Finished   uint64
	InProgress uint64
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

type progressBarRsp struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
	Remaining  float64   `json:"remaining_seconds"`
}

// MarshalJSON reports a consistent snapshot of the bar together with an
// estimate of the remaining time in seconds, which is zero until the first
// unit finishes.
func (b *ProgressBar) MarshalJSON() ([]byte, error) {
	b.lock.Lock()
	rsp := progressBarRsp{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
	b.lock.Unlock()

	if rsp.Finished > 0 && rsp.Finished < rsp.Total {
		perUnit := time.Since(rsp.StartTime).Seconds() / float64(rsp.Finished)
		rsp.Remaining = perUnit * float64(rsp.Total-rsp.Finished)
	}

	return json.Marshal(rsp)
}
