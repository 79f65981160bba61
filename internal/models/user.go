package models

// User is an authenticated wallet session.
//
// There are no accounts: a user is whoever proves control of an address by
// signing a sign-in challenge. DisplayName comes from the address book when
// an entry exists.
type User struct {
	Address     string
	DisplayName string
}
