package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title FinTrack API
// @version 1.0
// @description Personal finance ledger, budgets and spending analysis API

// @contact.name API Support

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "FinTrack personal finance service",
	Long: `FinTrack records income and expenses against a wallet and budget,
and serves spending analysis, forecasts and AI-written insights over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCategoriesCmd())
	rootCmd.AddCommand(reconcileCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
