package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jredh-dev/hochzeit/pkg/models"
)

type memLedger struct {
	mu       sync.Mutex
	gifts    map[string]models.Gift
	order    []string
	loadErr  error
	failOn   string // gift id whose write fails
	stale    string // gift id whose write reports ErrStale
	writes   []string
}

func newMemLedger(gifts ...models.Gift) *memLedger {
	l := &memLedger{gifts: make(map[string]models.Gift)}
	for _, g := range gifts {
		l.gifts[g.ID] = g
		l.order = append(l.order, g.ID)
	}
	return l
}

func (l *memLedger) Gifts(context.Context) ([]models.Gift, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	out := make([]models.Gift, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.gifts[id])
	}
	return out, nil
}

func (l *memLedger) SetContributed(_ context.Context, g models.Gift, contributed int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if g.ID == l.failOn {
		return errors.New("sheet write failed")
	}
	if g.ID == l.stale {
		return ErrStale
	}
	cur := l.gifts[g.ID]
	if cur.ContributedParts != g.ContributedParts {
		return ErrStale
	}
	cur.ContributedParts = contributed
	l.gifts[g.ID] = cur
	l.writes = append(l.writes, g.ID)
	return nil
}

func (l *memLedger) contributed(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gifts[id].ContributedParts
}

type memAudit struct {
	entries []AuditEntry
	err     error
}

func (a *memAudit) Append(_ context.Context, e AuditEntry) error {
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, e)
	return nil
}

type memNotifier struct {
	receipts []Receipt
	err      error
}

func (n *memNotifier) NotifyContribution(_ context.Context, r Receipt) error {
	n.receipts = append(n.receipts, r)
	return n.err
}

func testGifts() []models.Gift {
	return []models.Gift{
		{ID: "coffee", Title: "Kaffeemaschine", Price: "CHF 300", TotalParts: 3},
		{ID: "bike", Title: "Velo", Price: "CHF 800", TotalParts: 8, ContributedParts: 4},
		{ID: "vase", Title: "Vase", Price: "CHF 40", TotalParts: 1, ContributedParts: 1},
	}
}

func validSubmission(items ...LineItem) Submission {
	return Submission{Name: " Anna ", Email: "anna@example.ch", Message: " Alles Gute ", Items: items}
}

func TestReserve_Batch(t *testing.T) {
	ledger := newMemLedger(testGifts()...)
	audit := &memAudit{}
	notifier := &memNotifier{}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(ledger, nil, WithAuditLog(audit), WithNotifier(notifier), WithClock(func() time.Time { return now }))

	res, err := svc.Reserve(context.Background(), validSubmission(
		LineItem{GiftID: "coffee", Parts: 1},
		LineItem{GiftID: "bike", Parts: 2},
	))
	require.NoError(t, err)

	assert.Equal(t, SuccessMessage, res.Message)
	assert.NotEmpty(t, res.SubmissionID)
	require.Len(t, res.Items, 2)
	assert.Equal(t, ItemResult{
		GiftID: "coffee", Title: "Kaffeemaschine", Parts: 1, TotalParts: 3,
		ContributedParts: 1, RemainingParts: 2,
		Amount: Amount{Label: "CHF 100", Numeric: 100, Prefix: "CHF"},
	}, res.Items[0])
	assert.Equal(t, 6, res.Items[1].ContributedParts)
	assert.Equal(t, 2, res.Items[1].RemainingParts)
	assert.Equal(t, "CHF 300", res.Total.Label)

	assert.Equal(t, 1, ledger.contributed("coffee"))
	assert.Equal(t, 6, ledger.contributed("bike"))

	require.Len(t, audit.entries, 2)
	assert.Equal(t, AuditEntry{
		Timestamp: now, SubmissionID: res.SubmissionID, GiftID: "coffee", GiftTitle: "Kaffeemaschine",
		Parts: 1, Name: "Anna", Email: "anna@example.ch", Message: "Alles Gute",
	}, audit.entries[0])

	require.Len(t, notifier.receipts, 1)
	assert.Equal(t, "anna@example.ch", notifier.receipts[0].Email)
	assert.Equal(t, "CHF 300", notifier.receipts[0].Total.Label)
}

func TestReserve_Validation(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
	}{
		{"blank name", Submission{Name: "  ", Email: "a@b.ch", Items: []LineItem{{GiftID: "coffee"}}}},
		{"bad email", Submission{Name: "Anna", Email: "anna@example", Items: []LineItem{{GiftID: "coffee"}}}},
		{"missing email", Submission{Name: "Anna", Items: []LineItem{{GiftID: "coffee"}}}},
		{"empty basket", Submission{Name: "Anna", Email: "a@b.ch"}},
		{"blank gift id", Submission{Name: "Anna", Email: "a@b.ch", Items: []LineItem{{GiftID: " ", Parts: 1}}}},
		{"bad optional email", Submission{Name: "Anna", Email: "nope", EmailOptional: true, Items: []LineItem{{GiftID: "coffee"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newMemLedger(testGifts()...)
			_, err := NewService(ledger, nil).Reserve(context.Background(), tt.sub)
			require.ErrorIs(t, err, ErrValidation)
			assert.NotEmpty(t, UserMessage(err, ""))
			assert.Empty(t, ledger.writes)
		})
	}
}

func TestReserve_OptionalEmailSkipsNotification(t *testing.T) {
	ledger := newMemLedger(testGifts()...)
	notifier := &memNotifier{}
	svc := NewService(ledger, nil, WithNotifier(notifier))

	_, err := svc.Reserve(context.Background(), Submission{
		Name: "Anna", EmailOptional: true, Items: []LineItem{{GiftID: "coffee", Parts: 1}},
	})
	require.NoError(t, err)
	assert.Empty(t, notifier.receipts)
	assert.Equal(t, 1, ledger.contributed("coffee"))
}

func TestReserve_UnknownGiftAbortsBatch(t *testing.T) {
	ledger := newMemLedger(testGifts()...)
	_, err := NewService(ledger, nil).Reserve(context.Background(), validSubmission(
		LineItem{GiftID: "coffee", Parts: 1},
		LineItem{GiftID: "yacht", Parts: 1},
	))

	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, ledger.writes)
	assert.Equal(t, 0, ledger.contributed("coffee"))
}

func TestReserve_ExhaustedGift(t *testing.T) {
	for _, parts := range []PartCount{1, 3} {
		ledger := newMemLedger(testGifts()...)
		_, err := NewService(ledger, nil).Reserve(context.Background(), validSubmission(
			LineItem{GiftID: "vase", Parts: parts},
		))
		require.ErrorIs(t, err, ErrConflict)
		assert.Contains(t, UserMessage(err, ""), "bereits komplett reserviert")
	}
}

func TestReserve_DuplicateItemsAreSummed(t *testing.T) {
	ledger := newMemLedger(testGifts()...) // bike has 4 remaining
	_, err := NewService(ledger, nil).Reserve(context.Background(), validSubmission(
		LineItem{GiftID: "bike", Parts: 2},
		LineItem{GiftID: "bike", Parts: 3},
	))

	require.ErrorIs(t, err, ErrConflict)
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 4, re.Remaining)
	assert.Contains(t, re.Message, "nur noch 4 Anteil(e)")
	assert.Equal(t, 4, ledger.contributed("bike"))
}

func TestReserve_DuplicateItemsWithinCapacity(t *testing.T) {
	ledger := newMemLedger(testGifts()...)
	res, err := NewService(ledger, nil).Reserve(context.Background(), validSubmission(
		LineItem{GiftID: "bike", Parts: 1},
		LineItem{GiftID: "bike", Parts: 3},
	))

	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 4, res.Items[0].Parts)
	assert.Equal(t, 0, res.Items[0].RemainingParts)
	assert.Equal(t, 8, ledger.contributed("bike"))
}

func TestReserve_OverCapacityLeavesOtherGiftsUntouched(t *testing.T) {
	ledger := newMemLedger(testGifts()...)
	_, err := NewService(ledger, nil).Reserve(context.Background(), validSubmission(
		LineItem{GiftID: "coffee", Parts: 1},
		LineItem{GiftID: "bike", Parts: 5},
	))

	require.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, ledger.writes)
	for _, g := range testGifts() {
		assert.Equal(t, g.ContributedParts, ledger.contributed(g.ID), g.ID)
	}
}

func TestReserve_StoreUnavailable(t *testing.T) {
	ledger := newMemLedger(testGifts()...)
	ledger.loadErr = errors.New("quota exceeded")

	_, err := NewService(ledger, nil).Reserve(context.Background(), validSubmission(LineItem{GiftID: "coffee"}))
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Contains(t, UserMessage(err, ""), "später")
}

func TestReserve_FailedWriteRevertsEarlierItems(t *testing.T) {
	ledger := newMemLedger(testGifts()...)
	ledger.failOn = "bike"

	_, err := NewService(ledger, nil).Reserve(context.Background(), validSubmission(
		LineItem{GiftID: "coffee", Parts: 2},
		LineItem{GiftID: "bike", Parts: 1},
	))

	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 0, ledger.contributed("coffee"))
	assert.Equal(t, []string{"coffee", "coffee"}, ledger.writes)
}

func TestReserve_StaleWriteIsConflict(t *testing.T) {
	ledger := newMemLedger(testGifts()...)
	ledger.stale = "coffee"

	_, err := NewService(ledger, nil).Reserve(context.Background(), validSubmission(LineItem{GiftID: "coffee"}))
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 0, ledger.contributed("coffee"))
}

func TestReserve_SideEffectFailuresAreSwallowed(t *testing.T) {
	ledger := newMemLedger(testGifts()...)
	svc := NewService(ledger, nil,
		WithAuditLog(&memAudit{err: errors.New("log sheet missing")}),
		WithNotifier(&memNotifier{err: errors.New("smtp down")}),
	)

	res, err := svc.Reserve(context.Background(), validSubmission(LineItem{GiftID: "coffee", Parts: 3}))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Items[0].RemainingParts)
	assert.Equal(t, 3, ledger.contributed("coffee"))
}

func TestReserve_ConcurrentSubmissionsDoNotOvercommit(t *testing.T) {
	ledger := newMemLedger(testGifts()...) // coffee: 3 parts open
	svc := NewService(ledger, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Reserve(context.Background(), validSubmission(LineItem{GiftID: "coffee", Parts: 1})); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	assert.Equal(t, 3, ledger.contributed("coffee"))
}

func TestRemainingInvariantHolds(t *testing.T) {
	ledger := newMemLedger(testGifts()...)
	svc := NewService(ledger, nil)
	_, _ = svc.Reserve(context.Background(), validSubmission(LineItem{GiftID: "bike", Parts: 4}))
	_, _ = svc.Reserve(context.Background(), validSubmission(LineItem{GiftID: "coffee", Parts: 2}))

	gifts, err := svc.Gifts(context.Background())
	require.NoError(t, err)
	for _, g := range gifts {
		assert.Equal(t, max(0, g.TotalParts-g.ContributedParts), g.Remaining(), g.ID)
	}
}

func TestPartCount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want PartCount
	}{
		{`{"parts":2}`, 2},
		{`{"parts":2.6}`, 3},
		{`{"parts":"4"}`, 4},
		{`{"parts":"1,5"}`, 2},
		{`{"parts":0}`, 1},
		{`{"parts":-3}`, 1},
		{`{"parts":"viele"}`, 1},
		{`{"parts":null}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var item LineItem
			require.NoError(t, json.Unmarshal([]byte(tt.in), &item))
			assert.Equal(t, tt.want, item.Parts)
		})
	}
}
