package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	sessionKey  string
	showProfile bool
)

var rootCmd = &cobra.Command{
	Use:   "talentscout",
	Short: "TalentScout hiring assistant",
	Long:  "TalentScout collects candidate details one question at a time, then prepares technical interview questions and a confidence assessment for the recruiter.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return startApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "config.json", "path to config file (JSON or YAML)")
	rootCmd.Flags().StringVar(&sessionKey, "session", "", "session key (random when empty)")
	rootCmd.Flags().BoolVar(&showProfile, "show-profile", false, "print the candidate profile when the screening ends")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
