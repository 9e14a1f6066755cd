// Package trades persists trade execution transitions in a WAL so that
// interrupted executions can be found and reconciled after a restart.
package trades

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/hopswap/internal/domain"
)

const (
	DefaultDir   = "./wal/trades"
	segmentLimit = 1000
	maxSegments  = 100

	tradeKeyPrefix = "trade_"
)

// Journal is a WAL-backed record of execution state transitions.
type Journal struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewJournal initializes a WAL-backed trade journal.
func NewJournal(dir string) (*Journal, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "trade_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init trade journal WAL")
	}

	return &Journal{wal: wal}, nil
}

// Append writes one execution transition.
func (j *Journal) Append(event domain.ExecutionEvent) error {
	if j == nil || j.wal == nil {
		return errors.New("trade journal is not initialized")
	}
	if event.TradeID == "" {
		return errors.New("execution event trade id is required")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal execution event")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.wal.Write(j.wal.CurrentIndex()+1, tradeKeyPrefix+event.TradeID, payload)
}

// Events returns all transitions recorded for a trade, in write order.
func (j *Journal) Events(tradeID string) ([]domain.ExecutionEvent, error) {
	if j == nil || j.wal == nil {
		return nil, errors.New("trade journal is not initialized")
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	var events []domain.ExecutionEvent
	for msg := range j.wal.Iterator() {
		if msg.Key != tradeKeyPrefix+tradeID {
			continue
		}
		var event domain.ExecutionEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return nil, errors.Wrap(err, "decode execution event")
		}
		events = append(events, event)
	}

	return events, nil
}

// Unfinished returns the ids of trades whose latest transition is not
// terminal. These need reconciliation after a restart.
func (j *Journal) Unfinished() ([]string, error) {
	if j == nil || j.wal == nil {
		return nil, errors.New("trade journal is not initialized")
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	last := make(map[string]domain.ExecutionEvent)
	var order []string
	for msg := range j.wal.Iterator() {
		if !strings.HasPrefix(msg.Key, tradeKeyPrefix) {
			continue
		}
		var event domain.ExecutionEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return nil, errors.Wrap(err, "decode execution event")
		}
		if _, seen := last[event.TradeID]; !seen {
			order = append(order, event.TradeID)
		}
		last[event.TradeID] = event
	}

	var unfinished []string
	for _, id := range order {
		if !last[id].Terminal() {
			unfinished = append(unfinished, id)
		}
	}

	return unfinished, nil
}

// Close closes the underlying WAL.
func (j *Journal) Close() error {
	if j == nil || j.wal == nil {
		return errors.New("trade journal is not initialized")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.wal.Close()
}
