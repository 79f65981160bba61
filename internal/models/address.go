package models

// AddressEntry maps a wallet address to the name of the person who owns it.
// Addresses are unique in the book; one owner may have several addresses.
type AddressEntry struct {
	Address   string
	OwnerName string
	CreatedAt int64
}
