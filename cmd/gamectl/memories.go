package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	memoriesCmd := &cobra.Command{Use: "memories", Short: "Memory operations"}

	// add
	var content, location, memType string
	var importance float64
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Ingest a memory directly",
		RunE: func(cmd *cobra.Command, args []string) error {
			if playerFlag == "" || content == "" {
				return fmt.Errorf("--player and --content required")
			}
			payload := map[string]interface{}{
				"content":    content,
				"importance": importance,
			}
			if location != "" {
				payload["location"] = location
			}
			if memType != "" {
				payload["type"] = memType
			}
			return runAddMemory(apiFlag, playerFlag, payload, os.Stdout)
		},
	}
	addCmd.Flags().StringVarP(&content, "content", "c", "", "Memory content (required)")
	addCmd.Flags().StringVarP(&location, "location", "l", "", "Location the memory happened at")
	addCmd.Flags().StringVarP(&memType, "type", "t", "event", "Memory type tag")
	addCmd.Flags().Float64VarP(&importance, "importance", "i", 0.5, "Importance weight in [0,1]")
	_ = addCmd.MarkFlagRequired("content")
	memoriesCmd.AddCommand(addCmd)

	// list
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a player's memories by importance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if playerFlag == "" {
				return fmt.Errorf("--player required")
			}
			return runListMemories(apiFlag, playerFlag, limit, os.Stdout)
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of memories")
	memoriesCmd.AddCommand(listCmd)

	rootCmd.AddCommand(memoriesCmd)
}
