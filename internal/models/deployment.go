package models

// Deployment records where the contract pair was deployed on one network.
// The JSON layout matches the files the deployment tooling has always
// written to deployments/<network>.json.
type Deployment struct {
	Network             string `json:"network"`
	ExpenseTokenAddress string `json:"expenseTokenAddress"`
	SplitMeAddress      string `json:"splitMeAddress"`
	Deployer            string `json:"deployer"`
	Timestamp           string `json:"timestamp"`
	ExpenseTokenTx      string `json:"expenseTokenTx"`
	SplitMeTx           string `json:"splitMeTx"`
}

// BalanceCheckerDeployment records a BalanceChecker deployment, kept in its
// own file so it never overwrites the main record.
type BalanceCheckerDeployment struct {
	Network               string `json:"network"`
	BalanceCheckerAddress string `json:"balanceCheckerAddress"`
	Deployer              string `json:"deployer"`
	Timestamp             string `json:"timestamp"`
	BalanceCheckerTx      string `json:"balanceCheckerTx"`
}
