package api

type GetNonceRequest struct {
	Address string `json:"address"`
}

// GetNonceResponse carries the exact message the wallet must sign.
type GetNonceResponse struct {
	Nonce     string     `json:"nonce"`
	Message   string     `json:"message"`
	ExpiresAt *Timestamp `json:"expiresAt,omitempty"`
}

type SignInRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

type SignInResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}
