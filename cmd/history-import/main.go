package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mmdatafocus/ihome_import/config"
	"github.com/mmdatafocus/ihome_import/importer"
	"github.com/mmdatafocus/ihome_import/ledger"
	"github.com/mmdatafocus/ihome_import/utils"
)

var (
	purchasesPath string
	salesPath     string
	apiBase       string
)

var rootCmd = &cobra.Command{
	Use:   "history-import",
	Short: "Replay historical purchase and sales ledgers into the inventory system",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Import the given ledger exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVar(&purchasesPath, "purchases", "", "path to the purchase ledger export (.csv or .xlsx)")
	runCmd.Flags().StringVar(&salesPath, "sales", "", "path to the sales ledger export (.csv or .xlsx)")
	runCmd.Flags().StringVar(&apiBase, "api-base", "", "base URL of the system of record (overrides IMPORT_API_BASE_URL)")
	rootCmd.AddCommand(runCmd)
}

func runImport(ctx context.Context) error {
	logger := config.GetLogger()

	if purchasesPath == "" && salesPath == "" {
		return fmt.Errorf("nothing to import: pass --purchases and/or --sales")
	}

	ctx = utils.SetCorrelationIdInContext(ctx, uuid.NewString())

	var purchaseRows, salesRows []ledger.Row
	requested, unreadable := 0, 0

	if purchasesPath != "" {
		requested++
		rows, err := ledger.ReadFile(purchasesPath, ledger.KindPurchase)
		if err != nil {
			// One unreadable source only fails its own ledger.
			unreadable++
			config.LogError(logger, "main", "runImport", "read purchase ledger", purchasesPath, err)
		} else {
			purchaseRows = rows
		}
	}
	if salesPath != "" {
		requested++
		rows, err := ledger.ReadFile(salesPath, ledger.KindSales)
		if err != nil {
			unreadable++
			config.LogError(logger, "main", "runImport", "read sales ledger", salesPath, err)
		} else {
			salesRows = rows
		}
	}
	if unreadable == requested {
		return fmt.Errorf("no ledger source could be read")
	}

	base := apiBase
	if base == "" {
		base = config.GetAPIBaseURL()
	}
	logger.WithFields(logrus.Fields{"apiBase": base}).Info("starting history import")

	summary := importer.NewRunner(base).Run(ctx, purchaseRows, salesRows)

	fmt.Printf("Purchases: %d created, %d failed, %d skipped\n",
		summary.Purchases.Created, summary.Purchases.Failed, summary.Purchases.Skipped)
	fmt.Printf("Sales: %d created, %d failed, %d skipped\n",
		summary.Sales.Created, summary.Sales.Failed, summary.Sales.Skipped)
	return nil
}

func main() {
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if err := rootCmd.ExecuteContext(sigCtx); err != nil {
		os.Exit(1)
	}
}
