// Package cmd contains the admin app.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var url string

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the service.")
}

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Operations against a running service",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
