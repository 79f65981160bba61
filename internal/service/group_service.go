package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/splitme/splitme/internal/calculator"
	"github.com/splitme/splitme/internal/metrics"
	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/storage"
	"github.com/splitme/splitme/internal/wallet"
	"github.com/splitme/splitme/pkg/api"
	"github.com/splitme/splitme/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group with the caller as creator. The group is
// stored without a contract id until the reconciler sees its GroupCreated
// event.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	creator, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"creator", creator,
		"members_count", len(req.Msg.Members),
	)

	name, err := requiredText("group name", req.Msg.Name, maxGroupNameLen)
	if err != nil {
		return nil, err
	}
	category := models.DefaultCategory
	if strings.TrimSpace(req.Msg.Category) != "" {
		if category, err = requiredText("category", req.Msg.Category, maxCategoryLen); err != nil {
			return nil, err
		}
	}
	members, err := wallet.ParseAddresses(req.Msg.Members)
	if err != nil {
		return nil, connectError(err)
	}
	txHash, err := wallet.ParseTxHash(req.Msg.TxHash)
	if err != nil {
		return nil, connectError(err)
	}

	group := &models.Group{
		Name:     name,
		Creator:  creator,
		Members:  members,
		Category: category,
		TxHash:   txHash,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connectError(err)
	}
	metrics.RecordLedger(metrics.KindGroup, 1)

	slog.Info("Group created", "group_id", group.ID, "tx_hash", group.TxHash)

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	if _, err := callerAddress(ctx); err != nil {
		return nil, err
	}

	slog.Info("GetGroup request received", "group_id", req.Msg.GroupId)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupId)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	address, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ListGroups request received", "address", address)

	groups, err := s.store.ListGroupsByMember(ctx, address)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, connectError(err)
	}

	apiGroups := make([]*api.Group, len(groups))
	for i, group := range groups {
		apiGroups[i] = toAPIGroup(group)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: apiGroups}), nil
}

// UpdateGroupCategory changes a group's category tag.
func (s *GroupService) UpdateGroupCategory(ctx context.Context, req *connect.Request[api.UpdateGroupCategoryRequest]) (*connect.Response[api.UpdateGroupCategoryResponse], error) {
	address, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("UpdateGroupCategory request received",
		"group_id", req.Msg.GroupId,
		"category", req.Msg.Category,
	)

	category, err := requiredText("category", req.Msg.Category, maxCategoryLen)
	if err != nil {
		return nil, err
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, connectError(err)
	}
	if err := requireMember(group, address); err != nil {
		return nil, err
	}

	if err := s.store.UpdateGroupCategory(ctx, group.ID, category); err != nil {
		slog.Error("UpdateGroupCategory failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}
	group.Category = category

	slog.Info("Group category updated", "group_id", group.ID, "category", category)

	return connect.NewResponse(&api.UpdateGroupCategoryResponse{Group: toAPIGroup(group)}), nil
}

// AddMember adds an address to a group the caller belongs to.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	address, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("AddMember request received",
		"group_id", req.Msg.GroupId,
		"member", req.Msg.Address,
	)

	if strings.TrimSpace(req.Msg.Address) == "" {
		return nil, invalidArgument("member address is required")
	}
	member, err := wallet.ParseAddress(req.Msg.Address)
	if err != nil {
		return nil, connectError(err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, connectError(err)
	}
	if err := requireMember(group, address); err != nil {
		return nil, err
	}
	if group.HasMember(member) {
		return nil, connect.NewError(connect.CodeAlreadyExists,
			fmt.Errorf("%s is already a member", wallet.ShortAddress(member)))
	}

	if err := s.store.AddGroupMembers(ctx, group.ID, []string{member}); err != nil {
		slog.Error("AddMember failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}
	group.Members = append(group.Members, member)

	slog.Info("Member added", "group_id", group.ID, "member", member)

	return connect.NewResponse(&api.AddMemberResponse{Group: toAPIGroup(group)}), nil
}

// GetGroupBalances returns every member's balance and the simplified
// payments that would settle the group.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	address, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupId)

	ledger, err := loadGroupLedger(ctx, s.store, req.Msg.GroupId)
	if err != nil {
		return nil, connectError(err)
	}
	if err := requireMember(ledger.group, address); err != nil {
		return nil, err
	}

	balances, debts, err := ledger.balances()
	if err != nil {
		slog.Error("Failed to calculate balances", "group_id", req.Msg.GroupId, "error", err)
		return nil, connectError(err)
	}

	apiBalances := make([]*api.Balance, len(balances))
	for i, b := range balances {
		apiBalances[i] = toAPIBalance(b)
	}

	slog.Info("GetGroupBalances successful",
		"group_id", req.Msg.GroupId,
		"members", len(balances),
		"debts", len(debts),
	)

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Balances: apiBalances,
		Debts:    toAPIDebts(debts),
	}), nil
}

// GetUserBalance returns one member's balance and the payments it should
// make. It defaults to the caller.
func (s *GroupService) GetUserBalance(ctx context.Context, req *connect.Request[api.GetUserBalanceRequest]) (*connect.Response[api.GetUserBalanceResponse], error) {
	caller, err := callerAddress(ctx)
	if err != nil {
		return nil, err
	}

	target := caller
	if req.Msg.Address != "" {
		if target, err = wallet.ParseAddress(req.Msg.Address); err != nil {
			return nil, connectError(err)
		}
	}

	slog.Info("GetUserBalance request received", "group_id", req.Msg.GroupId, "address", target)

	ledger, err := loadGroupLedger(ctx, s.store, req.Msg.GroupId)
	if err != nil {
		return nil, connectError(err)
	}
	if err := requireMember(ledger.group, caller); err != nil {
		return nil, err
	}

	balances, edges, err := ledger.balances()
	if err != nil {
		return nil, connectError(err)
	}

	balance := calculator.MemberBalance{Member: target}
	for _, b := range balances {
		if b.Member == target {
			balance = b
			break
		}
	}
	debts, total := calculator.DebtsFrom(edges, target)

	return connect.NewResponse(&api.GetUserBalanceResponse{
		Balance:  toAPIBalance(balance),
		Debts:    toAPIDebts(debts),
		TotalDue: amountString(total),
	}), nil
}
