// Package chain talks to the SplitMe and ExpenseToken contracts: ABI
// bindings, event decoding and the approve-then-settle flow.
package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const splitMeABIJSON = `[
  {"type":"function","name":"createGroup","stateMutability":"nonpayable",
   "inputs":[{"name":"name","type":"string"},{"name":"category","type":"string"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"updateGroupCategory","stateMutability":"nonpayable",
   "inputs":[{"name":"groupId","type":"uint256"},{"name":"newCategory","type":"string"}],
   "outputs":[]},
  {"type":"function","name":"addMember","stateMutability":"nonpayable",
   "inputs":[{"name":"groupId","type":"uint256"},{"name":"member","type":"address"}],
   "outputs":[]},
  {"type":"function","name":"createExpense","stateMutability":"nonpayable",
   "inputs":[{"name":"groupId","type":"uint256"},{"name":"description","type":"string"},
             {"name":"amount","type":"uint256"},{"name":"participants","type":"address[]"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"settleExpense","stateMutability":"nonpayable",
   "inputs":[{"name":"expenseId","type":"uint256"},{"name":"amount","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"settleAllDebts","stateMutability":"nonpayable",
   "inputs":[{"name":"groupId","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable",
   "inputs":[],"outputs":[]},
  {"type":"function","name":"getGroup","stateMutability":"view",
   "inputs":[{"name":"groupId","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256"},{"name":"","type":"string"},{"name":"","type":"address"},
              {"name":"","type":"address[]"},{"name":"","type":"bool"},{"name":"","type":"uint256"},
              {"name":"","type":"string"}]},
  {"type":"function","name":"getExpense","stateMutability":"view",
   "inputs":[{"name":"expenseId","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256"},{"name":"","type":"uint256"},{"name":"","type":"string"},
              {"name":"","type":"uint256"},{"name":"","type":"address"},{"name":"","type":"address[]"},
              {"name":"","type":"bool"},{"name":"","type":"uint256"}]},
  {"type":"function","name":"getUserGroups","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"}],
   "outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getUserBalance","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"},{"name":"groupId","type":"uint256"}],
   "outputs":[{"name":"","type":"int256"}]},
  {"type":"function","name":"getGroupBalances","stateMutability":"view",
   "inputs":[{"name":"groupId","type":"uint256"}],
   "outputs":[{"name":"","type":"address[]"},{"name":"","type":"int256[]"}]},
  {"type":"event","name":"GroupCreated","anonymous":false,
   "inputs":[{"name":"groupId","type":"uint256","indexed":true},
             {"name":"name","type":"string","indexed":false},
             {"name":"creator","type":"address","indexed":false}]},
  {"type":"event","name":"GroupCategoryUpdated","anonymous":false,
   "inputs":[{"name":"groupId","type":"uint256","indexed":true},
             {"name":"category","type":"string","indexed":false}]},
  {"type":"event","name":"ExpenseCreated","anonymous":false,
   "inputs":[{"name":"expenseId","type":"uint256","indexed":true},
             {"name":"groupId","type":"uint256","indexed":true},
             {"name":"description","type":"string","indexed":false},
             {"name":"amount","type":"uint256","indexed":false},
             {"name":"paidBy","type":"address","indexed":false}]},
  {"type":"event","name":"ExpenseSettled","anonymous":false,
   "inputs":[{"name":"expenseId","type":"uint256","indexed":true},
             {"name":"settler","type":"address","indexed":false},
             {"name":"amount","type":"uint256","indexed":false}]}
]`

const expenseTokenABIJSON = `[
  {"type":"function","name":"name","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"symbol","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"allowance","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"approve","stateMutability":"nonpayable",
   "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"transferFrom","stateMutability":"nonpayable",
   "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"faucet","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

var (
	// SplitMeABI is the parsed SplitMe contract interface.
	SplitMeABI = mustParseABI("SplitMe", splitMeABIJSON)
	// ExpenseTokenABI is the parsed ERC-20 settlement token interface.
	ExpenseTokenABI = mustParseABI("ExpenseToken", expenseTokenABIJSON)
)

func mustParseABI(name, raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("chain: parse %s ABI: %v", name, err))
	}
	return parsed
}
