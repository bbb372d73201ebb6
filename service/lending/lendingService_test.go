package lending

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Danny213123/cps714-group5/model"
	"github.com/Danny213123/cps714-group5/repository/catalog"
	"github.com/Danny213123/cps714-group5/repository/ledger"
	"github.com/Danny213123/cps714-group5/service/policy"
)

type revokerMock struct {
	mu      sync.Mutex
	revoked []string
}

func (m *revokerMock) RevokeAll(loanID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked = append(m.revoked, loanID)
}

func (m *revokerMock) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.revoked...)
}

type fixture struct {
	svc     *service
	gateway catalog.Repo
	revoker *revokerMock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gw := catalog.New()
	rv := &revokerMock{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(ledger.New(), gw, policy.Default(), rv, log).(*service)
	return &fixture{svc: svc, gateway: gw, revoker: rv}
}

func (f *fixture) addItem(t *testing.T, copies int) string {
	t.Helper()
	id, err := f.gateway.CreateItem(context.Background(), model.ContentItem{
		Title:       "Dune",
		Author:      "Frank Herbert",
		Format:      model.FormatAudiobook,
		TotalCopies: copies,
		Audiobook:   &model.AudiobookInfo{DurationMinutes: 1260, Narrator: "Scott Brick"},
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) available(t *testing.T, itemID string) int {
	t.Helper()
	it, err := f.gateway.GetMetadata(context.Background(), itemID)
	require.NoError(t, err)
	return it.AvailableCopies
}

func TestCheckout_InvalidPeriod(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 1)

	for _, days := range []int{0, -3, 22} {
		_, err := f.svc.Checkout(context.Background(), "u1", itemID, days)
		require.Error(t, err)
		require.Equal(t, ErrInvalidPeriod, Code(err))
	}
	require.Equal(t, 1, f.available(t, itemID))
}

func TestCheckout_ItemNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), "u1", "missing", 14)
	require.Equal(t, ErrItemNotFound, Code(err))
}

func TestCheckout_NoCopies(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 0)

	_, err := f.svc.Checkout(context.Background(), "u1", itemID, 14)
	require.Equal(t, ErrNoCopies, Code(err))
	require.Equal(t, 0, f.available(t, itemID))
}

func TestCheckout_Success(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 2)

	out, err := f.svc.Checkout(context.Background(), "u1", itemID, 14)
	require.NoError(t, err)
	require.NotEmpty(t, out.LoanID)
	require.Equal(t, 1, f.available(t, itemID))

	ln, ok := f.svc.GetLoan(out.LoanID)
	require.True(t, ok)
	require.Equal(t, model.LoanActive, ln.Status)
	require.Equal(t, ln.CheckedOutAt.AddDate(0, 0, 14), ln.ExpiresAt)
	require.True(t, f.svc.HasActiveCheckout("u1", itemID))
}

func TestCheckout_DuplicateActiveLoan(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 5)

	out, err := f.svc.Checkout(context.Background(), "u1", itemID, 14)
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background(), "u1", itemID, 7)
	require.Equal(t, ErrAlreadyCheckedOut, Code(err))
	require.Equal(t, 4, f.available(t, itemID))

	// after returning, the same user may borrow the item again
	require.True(t, f.svc.Return(context.Background(), out.LoanID))
	_, err = f.svc.Checkout(context.Background(), "u1", itemID, 7)
	require.NoError(t, err)
}

func TestCheckout_ConcurrencyCeiling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var loanIDs []string
	for i := 0; i < 10; i++ {
		itemID := f.addItem(t, 1)
		out, err := f.svc.Checkout(ctx, "u1", itemID, 7)
		require.NoError(t, err)
		loanIDs = append(loanIDs, out.LoanID)
	}

	eleventh := f.addItem(t, 1)
	_, err := f.svc.Checkout(ctx, "u1", eleventh, 7)
	require.Equal(t, ErrLimitReached, Code(err))
	require.Equal(t, 1, f.available(t, eleventh))

	// returning one frees a slot
	require.True(t, f.svc.Return(ctx, loanIDs[0]))
	_, err = f.svc.Checkout(ctx, "u1", eleventh, 7)
	require.NoError(t, err)
}

func TestCheckout_ConcurrentSamePairOneWinner(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 5)
	ctx := context.Background()

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Checkout(ctx, "u1", itemID, 7)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var success, dup int
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		require.Equal(t, ErrAlreadyCheckedOut, Code(err))
		dup++
	}
	require.Equal(t, 1, success)
	require.Equal(t, n-1, dup)
	require.Equal(t, 4, f.available(t, itemID))
}

func TestReturn_RestoresCopyAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 1)
	ctx := context.Background()

	out, err := f.svc.Checkout(ctx, "u1", itemID, 14)
	require.NoError(t, err)
	require.Equal(t, 0, f.available(t, itemID))

	require.True(t, f.svc.Return(ctx, out.LoanID))
	require.Equal(t, 1, f.available(t, itemID))
	require.Equal(t, []string{out.LoanID}, f.revoker.calls())

	ln, _ := f.svc.GetLoan(out.LoanID)
	require.Equal(t, model.LoanReturned, ln.Status)
	require.NotNil(t, ln.ReturnedAt)

	// second return is a no-op outcome, not a fault
	require.False(t, f.svc.Return(ctx, out.LoanID))
	require.Equal(t, 1, f.available(t, itemID))

	require.False(t, f.svc.Return(ctx, "missing"))
}

func TestExpire_ReleasesCopyAndRevokesTokens(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 1)

	out, err := f.svc.Checkout(context.Background(), "u1", itemID, 7)
	require.NoError(t, err)

	f.svc.expire(out.LoanID)

	ln, _ := f.svc.GetLoan(out.LoanID)
	require.Equal(t, model.LoanExpired, ln.Status)
	require.Equal(t, 1, f.available(t, itemID))
	require.Equal(t, []string{out.LoanID}, f.revoker.calls())
}

func TestExpire_StaleTriggerIsSilentNoOp(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 1)
	ctx := context.Background()

	out, err := f.svc.Checkout(ctx, "u1", itemID, 7)
	require.NoError(t, err)
	require.True(t, f.svc.Return(ctx, out.LoanID))

	// fires after the loan already left active: nothing changes
	f.svc.expire(out.LoanID)

	ln, _ := f.svc.GetLoan(out.LoanID)
	require.Equal(t, model.LoanReturned, ln.Status)
	require.Equal(t, 1, f.available(t, itemID))
	require.Equal(t, []string{out.LoanID}, f.revoker.calls())

	f.svc.expire("missing")
}

func TestRenew_ExtendsActiveLoan(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 1)
	ctx := context.Background()

	out, err := f.svc.Checkout(ctx, "u1", itemID, 7)
	require.NoError(t, err)
	before, _ := f.svc.GetLoan(out.LoanID)

	require.True(t, f.svc.Renew(ctx, out.LoanID, 7))

	after, _ := f.svc.GetLoan(out.LoanID)
	require.True(t, after.ExpiresAt.After(before.ExpiresAt))
	require.Equal(t, before.ExpiresAt.AddDate(0, 0, 7), after.ExpiresAt)
	require.Equal(t, 1, after.Renewals)
}

func TestRenew_TerminalLoanUnchanged(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 1)
	ctx := context.Background()

	out, err := f.svc.Checkout(ctx, "u1", itemID, 7)
	require.NoError(t, err)
	require.True(t, f.svc.Return(ctx, out.LoanID))
	before, _ := f.svc.GetLoan(out.LoanID)

	require.False(t, f.svc.Renew(ctx, out.LoanID, 7))

	after, _ := f.svc.GetLoan(out.LoanID)
	require.Equal(t, before, after)

	require.False(t, f.svc.Renew(ctx, "missing", 7))
}

func TestRenew_CapEnforced(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 1)
	ctx := context.Background()

	out, err := f.svc.Checkout(ctx, "u1", itemID, 7)
	require.NoError(t, err)

	require.True(t, f.svc.Renew(ctx, out.LoanID, 7))
	require.True(t, f.svc.Renew(ctx, out.LoanID, 7))
	require.False(t, f.svc.Renew(ctx, out.LoanID, 7))

	ln, _ := f.svc.GetLoan(out.LoanID)
	require.Equal(t, 2, ln.Renewals)
}

func TestRenew_InvalidExtension(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 1)
	ctx := context.Background()

	out, err := f.svc.Checkout(ctx, "u1", itemID, 7)
	require.NoError(t, err)

	require.False(t, f.svc.Renew(ctx, out.LoanID, 0))
	require.False(t, f.svc.Renew(ctx, out.LoanID, 22))
}

func TestTimeRemaining(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 1)
	ctx := context.Background()

	out, err := f.svc.Checkout(ctx, "u1", itemID, 14)
	require.NoError(t, err)

	d := f.svc.TimeRemaining(out.LoanID)
	require.Greater(t, d, 13*24*time.Hour)

	require.True(t, f.svc.Return(ctx, out.LoanID))
	require.Equal(t, time.Duration(0), f.svc.TimeRemaining(out.LoanID))
	require.Equal(t, time.Duration(0), f.svc.TimeRemaining("missing"))
}

func TestTimeRemaining_ClampedPastExpiry(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 1)

	out, err := f.svc.Checkout(context.Background(), "u1", itemID, 7)
	require.NoError(t, err)

	// move the clock past expiration without firing the trigger
	f.svc.now = func() time.Time { return time.Now().AddDate(0, 0, 8) }
	require.Equal(t, time.Duration(0), f.svc.TimeRemaining(out.LoanID))
}

func TestGetUserLoans_EnrichedViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var itemIDs []string
	for i := 0; i < 3; i++ {
		itemIDs = append(itemIDs, f.addItem(t, 1))
	}
	var loanIDs []string
	for _, itemID := range itemIDs {
		out, err := f.svc.Checkout(ctx, "u1", itemID, 14)
		require.NoError(t, err)
		loanIDs = append(loanIDs, out.LoanID)
	}
	require.True(t, f.svc.Return(ctx, loanIDs[0]))

	all := f.svc.GetUserLoans(ctx, "u1", false)
	require.Len(t, all, 3)
	for _, v := range all {
		require.NotNil(t, v.Item)
		require.Equal(t, "Dune", v.Item.Title)
	}

	active := f.svc.GetUserLoans(ctx, "u1", true)
	require.Len(t, active, 2)
	for _, v := range active {
		require.Positive(t, v.RemainingSeconds)
	}

	require.Empty(t, f.svc.GetUserLoans(ctx, "u2", false))
}

func TestCheckout_ManyUsersDrainStock(t *testing.T) {
	f := newFixture(t)
	itemID := f.addItem(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Checkout(ctx, fmt.Sprintf("u%d", i), itemID, 7)
		require.NoError(t, err)
	}
	_, err := f.svc.Checkout(ctx, "u99", itemID, 7)
	require.Equal(t, ErrNoCopies, Code(err))
	require.Equal(t, 0, f.available(t, itemID))
}
