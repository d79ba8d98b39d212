package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

type faucetBalances struct {
	Ledger  int64  `json:"ledger_balance"`
	OnChain string `json:"onchain_balance"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the faucet balances.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/faucet/balance", url))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var balances faucetBalances
	if err := json.NewDecoder(resp.Body).Decode(&balances); err != nil {
		log.Fatal(err)
	}

	fmt.Println("ledger payouts left:", balances.Ledger)
	fmt.Println("on-chain base units:", balances.OnChain)
}
