// repository/ledger/repo.go
package ledger

import (
	"sort"
	"sync"

	"github.com/Danny213123/cps714-group5/model"
)

// Ledger is the authoritative in-memory loan store. Loans are inserted once
// and mutated in place under the lock via Apply; they are never removed, so
// terminal records remain queryable for history.
type Ledger struct {
	mu     sync.RWMutex
	loans  map[string]*model.Loan
	byUser map[string][]string
}

func New() *Ledger {
	return &Ledger{
		loans:  make(map[string]*model.Loan),
		byUser: make(map[string][]string),
	}
}

func (l *Ledger) Insert(loan *model.Loan) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := *loan
	l.loans[cp.ID] = &cp
	l.byUser[cp.UserID] = append(l.byUser[cp.UserID], cp.ID)
}

// Get returns a copy of the loan so callers cannot mutate ledger state.
func (l *Ledger) Get(loanID string) (model.Loan, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	loan, ok := l.loans[loanID]
	if !ok {
		return model.Loan{}, false
	}
	return *loan, true
}

// Apply runs fn on the live record under the write lock. Returns false for
// unknown loans. All status transitions go through here.
func (l *Ledger) Apply(loanID string, fn func(*model.Loan)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	loan, ok := l.loans[loanID]
	if !ok {
		return false
	}
	fn(loan)
	return true
}

func (l *Ledger) ActiveCount(userID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, id := range l.byUser[userID] {
		if l.loans[id].Status == model.LoanActive {
			n++
		}
	}
	return n
}

func (l *Ledger) HasActive(userID, itemID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, id := range l.byUser[userID] {
		loan := l.loans[id]
		if loan.ItemID == itemID && loan.Status == model.LoanActive {
			return true
		}
	}
	return false
}

func (l *Ledger) ListByUser(userID string, activeOnly bool) []model.Loan {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []model.Loan
	for _, id := range l.byUser[userID] {
		loan := l.loans[id]
		if activeOnly && loan.Status != model.LoanActive {
			continue
		}
		out = append(out, *loan)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CheckedOutAt.After(out[j].CheckedOutAt)
	})
	return out
}
