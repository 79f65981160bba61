package api

type CreateGroupRequest struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Members  []string `json:"members,omitempty"`
	// TxHash is the createGroup transaction sent by the wallet, if any.
	TxHash string `json:"txHash,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type UpdateGroupCategoryRequest struct {
	GroupId  string `json:"groupId"`
	Category string `json:"category"`
}

type UpdateGroupCategoryResponse struct {
	Group *Group `json:"group"`
}

type AddMemberRequest struct {
	GroupId string `json:"groupId"`
	Address string `json:"address"`
}

type AddMemberResponse struct {
	Group *Group `json:"group"`
}

type GetGroupBalancesRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Balances []*Balance `json:"balances"`
	Debts    []*Debt    `json:"debts"`
}

// GetUserBalanceRequest asks for one member's balance. An empty Address
// means the caller.
type GetUserBalanceRequest struct {
	GroupId string `json:"groupId"`
	Address string `json:"address,omitempty"`
}

type GetUserBalanceResponse struct {
	Balance *Balance `json:"balance"`
	// Debts are the payments this member should make.
	Debts    []*Debt `json:"debts"`
	TotalDue string  `json:"totalDue"`
}
