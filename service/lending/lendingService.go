package lending

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Danny213123/cps714-group5/model"
	"github.com/Danny213123/cps714-group5/repository/catalog"
	"github.com/Danny213123/cps714-group5/repository/ledger"
	"github.com/Danny213123/cps714-group5/service/policy"
)

// errors used by controllers

type ErrCode string

const (
	ErrInvalidPeriod     ErrCode = "INVALID_PERIOD"
	ErrLimitReached      ErrCode = "LIMIT_REACHED"
	ErrItemNotFound      ErrCode = "ITEM_NOT_FOUND"
	ErrNoCopies          ErrCode = "NO_COPIES"
	ErrAlreadyCheckedOut ErrCode = "ALREADY_CHECKED_OUT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// TokenRevoker invalidates every access token bound to a loan. Satisfied by
// the token authority; injected so the engine never imports it directly.
type TokenRevoker interface {
	RevokeAll(loanID string)
}

// dto

type Checkout struct {
	LoanID    string
	ExpiresAt time.Time
}

// LoanView is a loan enriched with item metadata and remaining time for the
// query surface.
type LoanView struct {
	model.Loan
	Item             *model.ContentItem `json:"item,omitempty"`
	RemainingSeconds int64              `json:"remaining_seconds"`
}

type Service interface {
	// Checkout reserves a copy and records an active loan, all or nothing.
	Checkout(ctx context.Context, userID, itemID string, loanPeriodDays int) (*Checkout, error)

	// Return transitions an active loan to returned and releases its copy.
	// False for unknown or non-active loans; an idempotent no-op, not a fault.
	Return(ctx context.Context, loanID string) bool

	// Renew extends an active loan and re-arms its expiration trigger.
	// False for unknown, non-active, or renewal-capped loans.
	Renew(ctx context.Context, loanID string, extensionDays int) bool

	GetLoan(loanID string) (model.Loan, bool)
	GetUserLoans(ctx context.Context, userID string, activeOnly bool) []LoanView
	HasActiveCheckout(userID, itemID string) bool
	TimeRemaining(loanID string) time.Duration

	// Start and Stop control the expiration scheduler goroutine.
	Start()
	Stop()
}

// ----- Service implementation -----

type service struct {
	// mu serializes every loan mutation, caller-driven and timer-driven
	// alike, so cross-entity steps (reserve copy + record loan) are atomic
	// from the caller's perspective.
	mu      sync.Mutex
	loans   *ledger.Ledger
	gateway catalog.Repo
	rules   policy.Rules
	tokens  TokenRevoker
	sched   *Scheduler
	log     *slog.Logger
	now     func() time.Time
}

func New(loans *ledger.Ledger, gateway catalog.Repo, rules policy.Rules, tokens TokenRevoker, log *slog.Logger) Service {
	s := &service{
		loans:   loans,
		gateway: gateway,
		rules:   rules,
		tokens:  tokens,
		log:     log,
		now:     time.Now,
	}
	s.sched = NewScheduler(s.expire, log)
	return s
}

func (s *service) Start() { s.sched.Start() }
func (s *service) Stop()  { s.sched.Stop() }

func (s *service) Checkout(ctx context.Context, userID, itemID string, loanPeriodDays int) (*Checkout, error) {
	if !s.rules.IsValidLoanPeriod(loanPeriodDays) {
		return nil, makeErr(ErrInvalidPeriod)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.rules.CanCheckout(s.loans.ActiveCount(userID)) {
		return nil, makeErr(ErrLimitReached)
	}

	if _, err := s.gateway.GetMetadata(ctx, itemID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, makeErr(ErrItemNotFound)
		}
		return nil, err
	}
	avail, err := s.gateway.IsAvailable(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !avail {
		return nil, makeErr(ErrNoCopies)
	}

	if s.loans.HasActive(userID, itemID) {
		return nil, makeErr(ErrAlreadyCheckedOut)
	}

	// Reserve the copy, then record the loan. If the reservation fails the
	// ledger is untouched; nothing after the reservation can fail.
	if err := s.gateway.DecrementAvailable(ctx, itemID); err != nil {
		if errors.Is(err, catalog.ErrNoCopies) {
			return nil, makeErr(ErrNoCopies)
		}
		return nil, err
	}

	now := s.now()
	loan := &model.Loan{
		ID:           uuid.NewString(),
		ItemID:       itemID,
		UserID:       userID,
		Status:       model.LoanActive,
		CheckedOutAt: now,
		ExpiresAt:    now.AddDate(0, 0, loanPeriodDays),
	}
	s.loans.Insert(loan)
	s.sched.Arm(loan.ID, loan.ExpiresAt)

	s.log.Info("checkout",
		"loan_id", loan.ID, "user_id", userID, "item_id", itemID,
		"expires_at", loan.ExpiresAt)

	return &Checkout{LoanID: loan.ID, ExpiresAt: loan.ExpiresAt}, nil
}

func (s *service) Return(ctx context.Context, loanID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.finishLoan(loanID, model.LoanReturned)
	if !ok {
		return false
	}
	s.sched.Disarm(loanID)
	if err := s.gateway.IncrementAvailable(ctx, loan.ItemID); err != nil {
		s.log.Error("release copy on return", "loan_id", loanID, "err", err)
	}
	s.tokens.RevokeAll(loanID)

	s.log.Info("return", "loan_id", loanID, "item_id", loan.ItemID)
	return true
}

// expire is invoked only by the scheduler. The trigger may be stale (loan
// returned or renewed since it was armed), in which case this is a silent
// no-op.
func (s *service) expire(loanID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.finishLoan(loanID, model.LoanExpired)
	if !ok {
		return
	}
	ctx := context.Background()
	if err := s.gateway.IncrementAvailable(ctx, loan.ItemID); err != nil {
		s.log.Error("release copy on expire", "loan_id", loanID, "err", err)
	}
	s.tokens.RevokeAll(loanID)

	s.log.Info("expire", "loan_id", loanID, "item_id", loan.ItemID)
}

// finishLoan moves an active loan to a terminal status. Callers hold s.mu.
func (s *service) finishLoan(loanID string, to model.LoanStatus) (model.Loan, bool) {
	var (
		done  bool
		after model.Loan
	)
	now := s.now()
	s.loans.Apply(loanID, func(l *model.Loan) {
		if l.Status != model.LoanActive {
			return
		}
		l.Status = to
		if to == model.LoanReturned {
			t := now
			l.ReturnedAt = &t
		}
		after = *l
		done = true
	})
	return after, done
}

func (s *service) Renew(ctx context.Context, loanID string, extensionDays int) bool {
	if extensionDays < 1 || extensionDays > s.rules.MaxLoanDays {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		renewed bool
		newExp  time.Time
	)
	s.loans.Apply(loanID, func(l *model.Loan) {
		if l.Status != model.LoanActive {
			return
		}
		if !s.rules.CanRenew(l.Renewals) {
			return
		}
		l.ExpiresAt = l.ExpiresAt.AddDate(0, 0, extensionDays)
		l.Renewals++
		newExp = l.ExpiresAt
		renewed = true
	})
	if !renewed {
		return false
	}
	// Arm bumps the generation; the stale trigger is dropped when it pops.
	s.sched.Arm(loanID, newExp)

	s.log.Info("renew", "loan_id", loanID, "expires_at", newExp)
	return true
}

func (s *service) GetLoan(loanID string) (model.Loan, bool) {
	return s.loans.Get(loanID)
}

func (s *service) GetUserLoans(ctx context.Context, userID string, activeOnly bool) []LoanView {
	rows := s.loans.ListByUser(userID, activeOnly)
	out := make([]LoanView, 0, len(rows))
	for _, loan := range rows {
		v := LoanView{Loan: loan}
		if item, err := s.gateway.GetMetadata(ctx, loan.ItemID); err == nil {
			v.Item = item
		}
		if loan.Status == model.LoanActive {
			if d := loan.ExpiresAt.Sub(s.now()); d > 0 {
				v.RemainingSeconds = int64(d.Seconds())
			}
		}
		out = append(out, v)
	}
	return out
}

func (s *service) HasActiveCheckout(userID, itemID string) bool {
	return s.loans.HasActive(userID, itemID)
}

// TimeRemaining is clamped to zero for anything not active.
func (s *service) TimeRemaining(loanID string) time.Duration {
	loan, ok := s.loans.Get(loanID)
	if !ok || loan.Status != model.LoanActive {
		return 0
	}
	d := loan.ExpiresAt.Sub(s.now())
	if d < 0 {
		return 0
	}
	return d
}
