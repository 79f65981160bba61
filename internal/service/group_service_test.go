package service

import (
	"context"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/splitme/splitme/pkg/api"
)

func createTestGroup(t *testing.T, c *testClients, creator string, members ...string) *api.Group {
	t.Helper()
	resp, err := c.groups.CreateGroup(context.Background(), as(creator, &api.CreateGroupRequest{
		Name:    "Roommates",
		Members: members,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func TestCreateGroup(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := c.groups.CreateGroup(context.Background(), as(alice, &api.CreateGroupRequest{
		Name:    "  Weekend Trip  ",
		Members: []string{strings.ToLower(bob), carol, bob},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.Id == "" {
		t.Error("expected group ID to be generated")
	}
	if group.Name != "Weekend Trip" {
		t.Errorf("expected trimmed name, got %q", group.Name)
	}
	if group.Creator != alice {
		t.Errorf("expected creator %s, got %s", alice, group.Creator)
	}
	if group.Category != "general" {
		t.Errorf("expected default category, got %q", group.Category)
	}
	want := []string{alice, bob, carol}
	if len(group.Members) != len(want) {
		t.Fatalf("expected %d members, got %v", len(want), group.Members)
	}
	for i, m := range want {
		if group.Members[i] != m {
			t.Errorf("member %d: expected %s, got %s", i, m, group.Members[i])
		}
	}
	if group.CreatedAt == nil {
		t.Error("expected CreatedAt to be set")
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name string
		req  *api.CreateGroupRequest
	}{
		{"empty name", &api.CreateGroupRequest{Name: "   "}},
		{"name too long", &api.CreateGroupRequest{Name: strings.Repeat("x", 51)}},
		{"invalid member", &api.CreateGroupRequest{Name: "Trip", Members: []string{"0x123"}}},
		{"invalid tx hash", &api.CreateGroupRequest{Name: "Trip", TxHash: "0xdead"}},
		{"category too long", &api.CreateGroupRequest{Name: "Trip", Category: strings.Repeat("к", 51)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.groups.CreateGroup(ctx, as(alice, tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := c.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Trip"}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})
}

func TestCreateGroup_CategoryCountsCharacters(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	// 30 characters, 60 bytes
	category := strings.Repeat("ж", 30)
	resp, err := c.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: "Trip", Category: category}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if resp.Msg.Group.Category != category {
		t.Errorf("expected category %q, got %q", category, resp.Msg.Group.Category)
	}

	update, err := c.groups.UpdateGroupCategory(ctx, as(alice, &api.UpdateGroupCategoryRequest{
		GroupId:  resp.Msg.Group.Id,
		Category: category,
	}))
	if err != nil {
		t.Fatalf("UpdateGroupCategory failed: %v", err)
	}
	if update.Msg.Group.Category != category {
		t.Errorf("expected category %q, got %q", category, update.Msg.Group.Category)
	}
}

func TestGetGroup_NotFound(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()

	_, err := c.groups.GetGroup(context.Background(), as(alice, &api.GetGroupRequest{GroupId: "missing"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestListGroups_OnlyCallerGroups(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	createTestGroup(t, c, alice, bob)
	createTestGroup(t, c, carol)

	resp, err := c.groups.ListGroups(ctx, as(bob, &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 1 {
		t.Fatalf("expected 1 group for bob, got %d", len(resp.Msg.Groups))
	}

	resp, err = c.groups.ListGroups(ctx, as(dave, &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 0 {
		t.Errorf("expected no groups for dave, got %d", len(resp.Msg.Groups))
	}
}

func TestUpdateGroupCategory(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()
	group := createTestGroup(t, c, alice, bob)

	resp, err := c.groups.UpdateGroupCategory(ctx, as(bob, &api.UpdateGroupCategoryRequest{
		GroupId:  group.Id,
		Category: "travel",
	}))
	if err != nil {
		t.Fatalf("UpdateGroupCategory failed: %v", err)
	}
	if resp.Msg.Group.Category != "travel" {
		t.Errorf("expected category travel, got %q", resp.Msg.Group.Category)
	}

	_, err = c.groups.UpdateGroupCategory(ctx, as(dave, &api.UpdateGroupCategoryRequest{
		GroupId:  group.Id,
		Category: "food",
	}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestAddMember(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()
	group := createTestGroup(t, c, alice)

	resp, err := c.groups.AddMember(ctx, as(alice, &api.AddMemberRequest{GroupId: group.Id, Address: bob}))
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if len(resp.Msg.Group.Members) != 2 || resp.Msg.Group.Members[1] != bob {
		t.Errorf("unexpected members: %v", resp.Msg.Group.Members)
	}

	_, err = c.groups.AddMember(ctx, as(alice, &api.AddMemberRequest{GroupId: group.Id, Address: bob}))
	assertCode(t, err, connect.CodeAlreadyExists)

	_, err = c.groups.AddMember(ctx, as(alice, &api.AddMemberRequest{GroupId: group.Id, Address: "nope"}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = c.groups.AddMember(ctx, as(dave, &api.AddMemberRequest{GroupId: group.Id, Address: carol}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestGetGroupBalances(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()
	group := createTestGroup(t, c, alice, bob, carol)

	_, err := c.expenses.CreateExpense(ctx, as(alice, &api.CreateExpenseRequest{
		GroupId:      group.Id,
		Description:  "Groceries",
		Amount:       "30",
		Participants: []string{alice, bob, carol},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	resp, err := c.groups.GetGroupBalances(ctx, as(bob, &api.GetGroupBalancesRequest{GroupId: group.Id}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}

	want := map[string]string{alice: "20", bob: "-10", carol: "-10"}
	if len(resp.Msg.Balances) != len(want) {
		t.Fatalf("expected %d balances, got %d", len(want), len(resp.Msg.Balances))
	}
	for _, b := range resp.Msg.Balances {
		if b.NetBalance != want[b.Member] {
			t.Errorf("%s: expected net %s, got %s", b.Member, want[b.Member], b.NetBalance)
		}
	}

	if len(resp.Msg.Debts) != 2 {
		t.Fatalf("expected 2 debts, got %d", len(resp.Msg.Debts))
	}
	if resp.Msg.Debts[0].From != bob || resp.Msg.Debts[0].To != alice || resp.Msg.Debts[0].Amount != "10" {
		t.Errorf("unexpected first debt: %+v", resp.Msg.Debts[0])
	}

	userResp, err := c.groups.GetUserBalance(ctx, as(carol, &api.GetUserBalanceRequest{GroupId: group.Id}))
	if err != nil {
		t.Fatalf("GetUserBalance failed: %v", err)
	}
	if userResp.Msg.Balance.NetBalance != "-10" || userResp.Msg.TotalDue != "10" {
		t.Errorf("unexpected carol balance: %+v due %s", userResp.Msg.Balance, userResp.Msg.TotalDue)
	}

	userResp, err = c.groups.GetUserBalance(ctx, as(carol, &api.GetUserBalanceRequest{GroupId: group.Id, Address: alice}))
	if err != nil {
		t.Fatalf("GetUserBalance failed: %v", err)
	}
	if userResp.Msg.TotalDue != "0" || len(userResp.Msg.Debts) != 0 {
		t.Errorf("alice should owe nothing, got %s", userResp.Msg.TotalDue)
	}
}
