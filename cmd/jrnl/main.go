package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/ptbooks/journal_backend/internal/core/domain"
	"github.com/ptbooks/journal_backend/internal/core/services"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const dateLayout = "2006-01-02"

var (
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "jrnl",
		Short: "Work with plain-text journal files",
		Long: `jrnl parses plain-text accounting journals and reports on them.
It can verify that transactions balance, compute per-account balances
and rewrite a journal in canonical form.`,
	}
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Verify that all transactions balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := parseFile(args[0])
		if err != nil {
			return err
		}

		svc := services.NewJournalService()
		unbalanced, err := svc.UnbalancedTransactions(journal)
		if err != nil {
			return err
		}
		if len(unbalanced) == 0 {
			fmt.Printf("%s: %d transactions, all balanced\n", args[0], len(journal.Transactions))
			return nil
		}

		for _, txn := range unbalanced {
			fmt.Printf("unbalanced: %s %s\n", txn.Date.Format(dateLayout), txn.Description)
		}
		return fmt.Errorf("%d unbalanced transactions", len(unbalanced))
	},
}

var balancesCmd = &cobra.Command{
	Use:   "balances <file>",
	Short: "Print per-account balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := parseFile(args[0])
		if err != nil {
			return err
		}

		asOf := time.Now()
		if asOfStr, _ := cmd.Flags().GetString("as-of"); asOfStr != "" {
			asOf, err = time.Parse(dateLayout, asOfStr)
			if err != nil {
				return fmt.Errorf("invalid --as-of date %q: %w", asOfStr, err)
			}
		}

		svc := services.NewJournalService()
		balances, err := svc.AllAccountBalances(journal, asOf)
		if err != nil {
			return err
		}

		paths := make([]string, 0, len(balances))
		for path := range balances {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		for _, path := range paths {
			perCommodity := balances[path]
			commodities := make([]string, 0, len(perCommodity))
			for commodity := range perCommodity {
				commodities = append(commodities, commodity)
			}
			sort.Strings(commodities)
			for _, commodity := range commodities {
				fmt.Printf("%-50s %s %s\n", path, commodity, domain.PlainString(perCommodity[commodity]))
			}
		}
		return nil
	},
}

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Rewrite a journal in canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := parseFile(args[0])
		if err != nil {
			return err
		}

		text, err := services.NewJournalSerializer().Serialize(journal)
		if err != nil {
			return err
		}

		if write, _ := cmd.Flags().GetBool("write"); write {
			return os.WriteFile(args[0], []byte(text), 0o644)
		}
		fmt.Print(text)
		return nil
	},
}

func parseFile(path string) (*domain.Journal, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))
	parser := services.NewJournalParser(viper.GetString("DEFAULT_CURRENCY"), logger)
	journal, err := parser.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &journal, nil
}

func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

func init() {
	viper.SetDefault("DEFAULT_CURRENCY", "CHF")
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	balancesCmd.Flags().String("as-of", "", "compute balances as of this date (YYYY-MM-DD, inclusive)")
	fmtCmd.Flags().BoolP("write", "w", false, "write the result back to the file instead of stdout")

	rootCmd.AddCommand(checkCmd, balancesCmd, fmtCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
