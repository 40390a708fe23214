package eventservices

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/signal-backtester/src/backtester/models"
)

type tradeRow struct {
	EntryDate         string  `csv:"entry_date"`
	ExitDate          string  `csv:"exit_date"`
	Strike            float64 `csv:"strike"`
	EntryPrice        float64 `csv:"entry_price"`
	ExitPrice         float64 `csv:"exit_price"`
	Quantity          int     `csv:"quantity"`
	Pnl               float64 `csv:"pnl"`
	PnlPct            float64 `csv:"pnl_pct"`
	HoldingPeriodDays int     `csv:"holding_period_days"`
	SignalClass       string  `csv:"signal_class"`
	CloseReason       string  `csv:"close_reason"`
}

type equityRow struct {
	Timestamp string  `csv:"timestamp"`
	Equity    float64 `csv:"equity"`
}

func ensureOutDir(outDir string) error {
	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	return nil
}

// ExportTradesToCsv writes the trade ledger of a finished run to outDir.
func ExportTradesToCsv(outDir string, runID uuid.UUID, trades []*models.Trade) (string, error) {
	if err := ensureOutDir(outDir); err != nil {
		return "", err
	}

	rows := make([]*tradeRow, 0, len(trades))
	for _, trade := range trades {
		rows = append(rows, &tradeRow{
			EntryDate:         trade.EntryDate.Format("2006-01-02"),
			ExitDate:          trade.ExitDate.Format("2006-01-02"),
			Strike:            trade.Strike,
			EntryPrice:        trade.EntryPrice,
			ExitPrice:         trade.ExitPrice,
			Quantity:          trade.Quantity,
			Pnl:               trade.Pnl,
			PnlPct:            trade.PnlPct,
			HoldingPeriodDays: trade.HoldingPeriodDays,
			SignalClass:       string(trade.Class),
			CloseReason:       string(trade.Reason),
		})
	}

	outFile := path.Join(outDir, fmt.Sprintf("trades-%s.csv", runID))
	file, err := os.Create(outFile)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}

	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return "", fmt.Errorf("error marshalling trades: %w", err)
	}

	log.Infof("Exported %d trades to %s", len(rows), outFile)

	return outFile, nil
}

// ExportEquityToCsv writes the daily equity curve of a finished run to outDir.
func ExportEquityToCsv(outDir string, runID uuid.UUID, points []*models.EquityPoint) (string, error) {
	if err := ensureOutDir(outDir); err != nil {
		return "", err
	}

	rows := make([]*equityRow, 0, len(points))
	for _, point := range points {
		rows = append(rows, &equityRow{
			Timestamp: point.Timestamp.Format(time.RFC3339),
			Equity:    point.Equity,
		})
	}

	outFile := path.Join(outDir, fmt.Sprintf("equity-%s.csv", runID))
	file, err := os.Create(outFile)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}

	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return "", fmt.Errorf("error marshalling equity curve: %w", err)
	}

	log.Infof("Exported %d equity points to %s", len(rows), outFile)

	return outFile, nil
}
