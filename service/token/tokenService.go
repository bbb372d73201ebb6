package token

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/Danny213123/cps714-group5/model"
)

// Service is the token authority. It owns the token set and nothing else:
// it does not check loan state, that is the access orchestrator's job.
type Service interface {
	// Issue creates an opaque bearer token bound to a loan/user/item triple.
	Issue(loanID, userID, itemID string, ttl time.Duration, deviceID, originID string) (*model.AccessToken, error)

	// Validate reports whether the token is usable. A token past its expiry
	// is revoked as a side effect, so this is not a pure query.
	Validate(token string) bool

	Lookup(token string) (model.AccessToken, bool)

	// Revoke and RevokeAll are idempotent; unknown tokens are a no-op.
	Revoke(token string)
	RevokeAll(loanID string)
}

type service struct {
	mu     sync.Mutex
	tokens map[string]*model.AccessToken
	byLoan map[string][]string
	now    func() time.Time
}

func New() Service {
	return &service{
		tokens: make(map[string]*model.AccessToken),
		byLoan: make(map[string][]string),
		now:    time.Now,
	}
}

// 32 random bytes, hex encoded. Collisions are negligible at any volume
// this system will see.
func newTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *service) Issue(loanID, userID, itemID string, ttl time.Duration, deviceID, originID string) (*model.AccessToken, error) {
	str, err := newTokenString()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t := &model.AccessToken{
		Token:     str,
		LoanID:    loanID,
		UserID:    userID,
		ItemID:    itemID,
		DeviceID:  deviceID,
		OriginID:  originID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	s.tokens[str] = t
	s.byLoan[loanID] = append(s.byLoan[loanID], str)

	cp := *t
	return &cp, nil
}

func (s *service) Validate(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok || t.IsRevoked() {
		return false
	}
	if now := s.now(); t.IsExpired(now) {
		t.RevokedAt = &now
		return false
	}
	return true
}

func (s *service) Lookup(token string) (model.AccessToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok {
		return model.AccessToken{}, false
	}
	return *t, true
}

func (s *service) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokeLocked(token)
}

func (s *service) RevokeAll(loanID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, str := range s.byLoan[loanID] {
		s.revokeLocked(str)
	}
}

func (s *service) revokeLocked(token string) {
	t, ok := s.tokens[token]
	if !ok || t.IsRevoked() {
		return
	}
	now := s.now()
	t.RevokedAt = &now
}
