package main

import (
	"encoding/json"
	"fmt"
	"os"

	"golang-news-sentiment/internal/regression"

	"github.com/spf13/cobra"
)

var inputPath string

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fits price prediction coefficients from historical market data",
	RunE:  runFit,
}

func runFit(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}

	var payload struct {
		Data []regression.MarketPoint `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to parse %s: %w", inputPath, err)
	}

	coef, err := regression.Fit(payload.Data)
	if err != nil {
		return err
	}

	fmt.Println("Optimal Coefficients:")
	fmt.Printf("alpha (rawPrediction): %g\n", coef.Alpha)
	fmt.Printf("beta (normalized_sentiment): %g\n", coef.Beta)
	fmt.Printf("intercept: %g\n", coef.Intercept)
	return nil
}

func main() {
	rootCmd := &cobra.Command{Use: "coefficient-fit"}

	fitCmd.Flags().StringVarP(&inputPath, "input", "i", "market_data.json", "Path to the market data file")

	rootCmd.AddCommand(fitCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing coefficient-fit CLI: %s\n", err)
		os.Exit(1)
	}
}
