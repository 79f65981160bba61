package api

type AddEntryRequest struct {
	Address   string `json:"address"`
	OwnerName string `json:"ownerName"`
}

type AddEntryResponse struct {
	Entry *AddressEntry `json:"entry"`
}

type RemoveEntryRequest struct {
	Address string `json:"address"`
}

type RemoveEntryResponse struct{}

type ListEntriesRequest struct{}

type ListEntriesResponse struct {
	Entries []*AddressEntry `json:"entries"`
}

type GetOwnerByAddressRequest struct {
	Address string `json:"address"`
}

type GetOwnerByAddressResponse struct {
	OwnerName string `json:"ownerName"`
}

type GetAddressesByOwnerRequest struct {
	OwnerName string `json:"ownerName"`
}

type GetAddressesByOwnerResponse struct {
	Addresses []string `json:"addresses"`
}
