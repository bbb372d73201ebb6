package access

import (
	"errors"
	"log/slog"
	"time"

	"github.com/Danny213123/cps714-group5/model"
	tokensvc "github.com/Danny213123/cps714-group5/service/token"
)

// errors used by controllers

type ErrCode string

const (
	ErrLoanNotFound     ErrCode = "LOAN_NOT_FOUND"
	ErrUnauthorizedUser ErrCode = "UNAUTHORIZED_USER"
	ErrLoanExpired      ErrCode = "LOAN_EXPIRED"
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

// LoanReader is the slice of the lending engine the orchestrator needs.
type LoanReader interface {
	GetLoan(loanID string) (model.Loan, bool)
	TimeRemaining(loanID string) time.Duration
}

// Decision is the outcome of an authorization request. Transient only; the
// orchestrator holds no state of its own.
type Decision struct {
	Authorized bool      `json:"authorized"`
	Token      string    `json:"token"`
	ItemID     string    `json:"item_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Service is the only component on the download path. It combines a loan
// ownership/validity check with token authority operations.
type Service interface {
	AuthorizeDownload(loanID, userID, deviceID, originID string) (*Decision, error)

	// ValidateAccess requires both a valid token and a matching bound item,
	// so a token for one item never authorizes another.
	ValidateAccess(token, itemID string) bool

	// RevokeAccess invalidates every token for the loan. Called on
	// return/expire and available for administrative revocation.
	RevokeAccess(loanID string)
}

type service struct {
	loans  LoanReader
	tokens tokensvc.Service
	ttl    time.Duration
	log    *slog.Logger
}

func New(loans LoanReader, tokens tokensvc.Service, ttl time.Duration, log *slog.Logger) Service {
	return &service{loans: loans, tokens: tokens, ttl: ttl, log: log}
}

func (s *service) AuthorizeDownload(loanID, userID, deviceID, originID string) (*Decision, error) {
	loan, ok := s.loans.GetLoan(loanID)
	if !ok {
		return nil, makeErr(ErrLoanNotFound)
	}
	if loan.UserID != userID {
		return nil, makeErr(ErrUnauthorizedUser)
	}
	remaining := s.loans.TimeRemaining(loanID)
	if remaining <= 0 {
		return nil, makeErr(ErrLoanExpired)
	}

	// Cap token lifetime at the loan's remaining time so a token cannot
	// outlive the loan it gates.
	ttl := s.ttl
	if remaining < ttl {
		ttl = remaining
	}
	t, err := s.tokens.Issue(loanID, loan.UserID, loan.ItemID, ttl, deviceID, originID)
	if err != nil {
		return nil, err
	}

	s.log.Info("download authorized",
		"loan_id", loanID, "user_id", userID, "item_id", loan.ItemID,
		"token_expires_at", t.ExpiresAt)

	return &Decision{
		Authorized: true,
		Token:      t.Token,
		ItemID:     t.ItemID,
		ExpiresAt:  t.ExpiresAt,
	}, nil
}

func (s *service) ValidateAccess(token, itemID string) bool {
	if !s.tokens.Validate(token) {
		return false
	}
	t, ok := s.tokens.Lookup(token)
	return ok && t.ItemID == itemID
}

func (s *service) RevokeAccess(loanID string) {
	s.tokens.RevokeAll(loanID)
	s.log.Info("access revoked", "loan_id", loanID)
}
