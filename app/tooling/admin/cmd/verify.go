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

var (
	verifyFrom   string
	verifyTo     string
	verifyAsset  string
	verifyAmount string
)

var verifyCmd = &cobra.Command{
	Use:   "verify [network] [txhash]",
	Short: "Verify a claimed transfer on mainnet or testnet.",
	Args:  cobra.ExactArgs(2),
	Run:   verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyFrom, "from", "", "Expected sender address.")
	verifyCmd.Flags().StringVar(&verifyTo, "to", "", "Expected recipient address.")
	verifyCmd.Flags().StringVar(&verifyAsset, "asset", "TOKEN", "Asset of the transfer.")
	verifyCmd.Flags().StringVar(&verifyAmount, "amount", "", "Minimum amount in base units.")
}

func verifyRun(cmd *cobra.Command, args []string) {
	network := args[0]
	if network != "mainnet" && network != "testnet" {
		log.Fatalf("unknown network %q", network)
	}

	body, err := json.Marshal(map[string]string{
		"address_from": verifyFrom,
		"address_to":   verifyTo,
		"tx_hash":      args[1],
		"asset":        verifyAsset,
		"amount":       verifyAmount,
	})
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/%s/verify", url, network), "application/json", bytes.NewReader(body))
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
