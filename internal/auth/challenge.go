package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultChallengeTTL is how long a sign-in challenge stays valid.
const DefaultChallengeTTL = 5 * time.Minute

var (
	ErrNoChallenge      = errors.New("no sign-in challenge for address")
	ErrChallengeExpired = errors.New("sign-in challenge expired")
)

// Challenge is a one-time message a wallet signs to prove control of an
// address.
type Challenge struct {
	Address   string
	Nonce     string
	Message   string
	ExpiresAt time.Time
}

// ChallengeStore keeps at most one outstanding challenge per address, in
// memory. Issuing a new challenge replaces the previous one.
type ChallengeStore struct {
	mu         sync.Mutex
	ttl        time.Duration
	now        func() time.Time
	challenges map[string]*Challenge
}

// NewChallengeStore creates a store whose challenges expire after ttl.
func NewChallengeStore(ttl time.Duration) *ChallengeStore {
	if ttl <= 0 {
		ttl = DefaultChallengeTTL
	}
	return &ChallengeStore{
		ttl:        ttl,
		now:        time.Now,
		challenges: make(map[string]*Challenge),
	}
}

// Issue creates a fresh challenge for a checksummed address.
func (s *ChallengeStore) Issue(address string) *Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)

	c := &Challenge{
		Address:   address,
		Nonce:     uuid.NewString(),
		ExpiresAt: now.Add(s.ttl),
	}
	c.Message = SignInMessage(c.Address, c.Nonce, c.ExpiresAt)
	s.challenges[address] = c
	return c
}

// Consume checks the outstanding challenge for address with verify and
// removes it once verify passes. A failed verification leaves the challenge
// in place, so only the wallet owner can use it up. Expired challenges are
// removed.
func (s *ChallengeStore) Consume(address string, verify func(*Challenge) error) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[address]
	if !ok {
		return nil, ErrNoChallenge
	}
	if !s.now().Before(c.ExpiresAt) {
		delete(s.challenges, address)
		return nil, ErrChallengeExpired
	}
	if err := verify(c); err != nil {
		return nil, err
	}
	delete(s.challenges, address)
	return c, nil
}

func (s *ChallengeStore) evictExpired(now time.Time) {
	for addr, c := range s.challenges {
		if !now.Before(c.ExpiresAt) {
			delete(s.challenges, addr)
		}
	}
}

// SignInMessage is the text shown in the wallet's signing prompt.
func SignInMessage(address, nonce string, expiresAt time.Time) string {
	return fmt.Sprintf(
		"Sign in to SplitMe\n\nAddress: %s\nNonce: %s\nExpires: %s",
		address, nonce, expiresAt.UTC().Format(time.RFC3339),
	)
}
