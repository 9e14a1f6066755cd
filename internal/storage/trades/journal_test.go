package trades

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/hopswap/internal/domain"
)

func event(tradeID string, phase domain.ExecutionPhase, hop int) domain.ExecutionEvent {
	return domain.ExecutionEvent{
		TradeID: tradeID,
		Venue:   "thorchain",
		Phase:   phase,
		Hop:     hop,
		Time:    time.Now(),
	}
}

func TestJournal(t *testing.T) {
	t.Run("events come back in write order", func(t *testing.T) {
		j, err := NewJournal(t.TempDir())
		require.NoError(t, err)
		defer j.Close()

		require.NoError(t, j.Append(event("t1", domain.PhaseIdle, 0)))
		require.NoError(t, j.Append(event("t1", domain.PhaseBroadcasting, 0)))
		require.NoError(t, j.Append(event("t2", domain.PhaseIdle, 0)))
		require.NoError(t, j.Append(event("t1", domain.PhaseTradeComplete, 0)))

		events, err := j.Events("t1")
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, domain.PhaseIdle, events[0].Phase)
		assert.Equal(t, domain.PhaseBroadcasting, events[1].Phase)
		assert.Equal(t, domain.PhaseTradeComplete, events[2].Phase)
	})

	t.Run("unfinished lists only non-terminal trades", func(t *testing.T) {
		j, err := NewJournal(t.TempDir())
		require.NoError(t, err)
		defer j.Close()

		require.NoError(t, j.Append(event("done", domain.PhaseIdle, 0)))
		require.NoError(t, j.Append(event("done", domain.PhaseTradeComplete, 0)))
		require.NoError(t, j.Append(event("failed", domain.PhaseIdle, 0)))
		require.NoError(t, j.Append(event("failed", domain.PhaseTradeFailed, 1)))
		require.NoError(t, j.Append(event("stuck", domain.PhaseAwaitingConfirmation, 0)))

		unfinished, err := j.Unfinished()
		require.NoError(t, err)
		assert.Equal(t, []string{"stuck"}, unfinished)
	})

	t.Run("append rejects an event without a trade id", func(t *testing.T) {
		j, err := NewJournal(t.TempDir())
		require.NoError(t, err)
		defer j.Close()

		assert.Error(t, j.Append(domain.ExecutionEvent{}))
	})

	t.Run("survives reopen", func(t *testing.T) {
		dir := t.TempDir()

		j, err := NewJournal(dir)
		require.NoError(t, err)
		require.NoError(t, j.Append(event("t1", domain.PhaseBroadcasting, 0)))
		require.NoError(t, j.Close())

		reopened, err := NewJournal(dir)
		require.NoError(t, err)
		defer reopened.Close()

		unfinished, err := reopened.Unfinished()
		require.NoError(t, err)
		assert.Equal(t, []string{"t1"}, unfinished)
	})
}
