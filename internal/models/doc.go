// Package models defines the core domain models for SplitMe.
//
// # Identity
//
// Every person is a wallet address, stored in EIP-55 checksum form. The
// address book maps addresses to human display names but is never used as
// identity.
//
// # Local and on-chain ids
//
// Groups and expenses get a local UUID when they are recorded. The SplitMe
// contract assigns its own numeric ids, which arrive later through
// GroupCreated and ExpenseCreated events. ChainID stays zero until the
// reconciler has matched the local row to its event.
//
// # Amounts
//
// Amounts are decimal token units (not base units). Conversion to the
// token's 18-decimal integer representation happens only at the chain
// boundary.
package models
