package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var payoutCmd = &cobra.Command{
	Use:   "payout [wallet]",
	Short: "Send the fixed faucet amount to a wallet.",
	Args:  cobra.ExactArgs(1),
	Run:   payoutRun,
}

var eligibilityCmd = &cobra.Command{
	Use:   "eligibility [wallet]",
	Short: "Check whether a wallet can still receive a payout.",
	Args:  cobra.ExactArgs(1),
	Run:   eligibilityRun,
}

func init() {
	rootCmd.AddCommand(payoutCmd)
	rootCmd.AddCommand(eligibilityCmd)
}

func payoutRun(cmd *cobra.Command, args []string) {
	body, err := json.Marshal(map[string]string{"user_address": args[0]})
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/testnet/faucet", url), "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.Status)
	fmt.Println(string(data))
}

func eligibilityRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/faucet/eligibility/%s", url, args[0]))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var result struct {
		Wallet   string `json:"wallet"`
		Eligible bool   `json:"eligible"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatal(err)
	}

	fmt.Println("wallet:  ", result.Wallet)
	fmt.Println("eligible:", result.Eligible)
}
