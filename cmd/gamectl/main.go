package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag    string
	playerFlag string
	rootCmd    = &cobra.Command{
		Use:   "gamectl",
		Short: "CLI client for the game service REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8787", "Game service base URL")
	rootCmd.PersistentFlags().StringVarP(&playerFlag, "player", "p", "", "Player ID (required for player operations)")

	// act subcommand
	actCmd := &cobra.Command{
		Use:   "act ACTION",
		Short: "Perform a player action and print the narrative response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if playerFlag == "" {
				return fmt.Errorf("--player required")
			}
			location, _ := cmd.Flags().GetString("location")
			return runAct(apiFlag, playerFlag, args[0], location, os.Stdout)
		},
	}
	actCmd.Flags().StringP("location", "l", "", "Player's current location")
	rootCmd.AddCommand(actCmd)

	// health subcommand
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(apiFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(healthCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
