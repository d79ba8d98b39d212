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

var onboardCmd = &cobra.Command{
	Use:   "onboard [wallet]",
	Short: "Create the records for a new wallet.",
	Args:  cobra.ExactArgs(1),
	Run:   onboardRun,
}

var userCmd = &cobra.Command{
	Use:   "user [wallet]",
	Short: "Print the counters and progress for a wallet.",
	Args:  cobra.ExactArgs(1),
	Run:   userRun,
}

func init() {
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(userCmd)
}

func onboardRun(cmd *cobra.Command, args []string) {
	body, err := json.Marshal(map[string]string{"wallet": args[0]})
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/users", url), "application/json", bytes.NewReader(body))
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

func userRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/users/%s", url, args[0]))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}

	fmt.Println(pretty.String())
}
