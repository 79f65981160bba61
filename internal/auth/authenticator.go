package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/storage"
	"github.com/splitme/splitme/internal/wallet"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction keeps the service layer independent of how a caller
// proves who they are.
type Authenticator interface {
	// Challenge returns the message the caller must sign for address.
	Challenge(ctx context.Context, address string) (*Challenge, error)

	// Authenticate verifies a signature over the outstanding challenge and
	// returns the signed-in user.
	Authenticate(ctx context.Context, address, signature string) (*models.User, error)
}

// WalletAuthenticator implements sign-in with an Ethereum personal_sign
// signature.
type WalletAuthenticator struct {
	challenges *ChallengeStore
	names      storage.AddressBook
}

// NewWalletAuthenticator creates a wallet authenticator. names is used to
// attach a display name to the user and may be nil.
func NewWalletAuthenticator(challenges *ChallengeStore, names storage.AddressBook) *WalletAuthenticator {
	return &WalletAuthenticator{challenges: challenges, names: names}
}

// Challenge issues a new sign-in challenge.
func (a *WalletAuthenticator) Challenge(ctx context.Context, address string) (*Challenge, error) {
	addr, err := wallet.ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return a.challenges.Issue(addr), nil
}

// Authenticate checks the signature over the challenge for address and
// consumes the challenge on success.
func (a *WalletAuthenticator) Authenticate(ctx context.Context, address, signature string) (*models.User, error) {
	addr, err := wallet.ParseAddress(address)
	if err != nil {
		return nil, err
	}

	_, err = a.challenges.Consume(addr, func(c *Challenge) error {
		return wallet.VerifySignature(addr, c.Message, signature)
	})
	if err != nil {
		return nil, err
	}

	user := &models.User{Address: addr}
	if a.names != nil {
		entry, err := a.names.GetAddressEntry(ctx, addr)
		switch {
		case err == nil:
			user.DisplayName = entry.OwnerName
		case !errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("failed to look up display name: %w", err)
		}
	}
	return user, nil
}
