package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/signal-backtester/src/backtester/metrics"
	"github.com/jiaming2012/signal-backtester/src/backtester/models"
	"github.com/jiaming2012/signal-backtester/src/eventpubsub"
	"github.com/jiaming2012/signal-backtester/src/eventservices"
	"github.com/jiaming2012/signal-backtester/src/utils"
)

type RunArgs struct {
	QuotesFile   string
	SignalsFile  string
	ConfigFile   string
	OutDir       string
	RiskFreeRate float64
}

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "Backtest option trading signals against historical quotes",
	Run: func(cmd *cobra.Command, args []string) {
		quotesFile, err := cmd.Flags().GetString("quotes")
		if err != nil {
			log.Fatalf("error getting quotes: %v", err)
		}

		signalsFile, err := cmd.Flags().GetString("signals")
		if err != nil {
			log.Fatalf("error getting signals: %v", err)
		}

		configFile, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		outDir, err := cmd.Flags().GetString("out-dir")
		if err != nil {
			log.Fatalf("error getting out-dir: %v", err)
		}

		riskFreeRate, err := cmd.Flags().GetFloat64("risk-free-rate")
		if err != nil {
			log.Fatalf("error getting risk-free-rate: %v", err)
		}

		if err := run(RunArgs{
			QuotesFile:   quotesFile,
			SignalsFile:  signalsFile,
			ConfigFile:   configFile,
			OutDir:       outDir,
			RiskFreeRate: riskFreeRate,
		}); err != nil {
			log.Fatalf("error running backtest: %v", err)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().String("quotes", "", "Path to the option quotes csv file.")
	rootCmd.PersistentFlags().String("signals", "", "Path to the trading signals csv file.")
	rootCmd.PersistentFlags().String("config", "", "Path to an optional yaml config file.")
	rootCmd.PersistentFlags().String("out-dir", "results", "Directory for trade and equity csv exports.")
	rootCmd.PersistentFlags().Float64("risk-free-rate", 0.0, "Annual risk free rate used by the risk-adjusted metrics.")

	rootCmd.MarkPersistentFlagRequired("quotes")
	rootCmd.MarkPersistentFlagRequired("signals")

	cobra.CheckErr(rootCmd.Execute())
}

func loadConfig(configFile string) (models.BacktestConfig, error) {
	cfg := models.NewBacktestConfig()

	if configFile == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config file: %w", err)
	}

	return cfg, nil
}

func subscribeLogging() {
	eventpubsub.Init()

	eventpubsub.Subscribe(eventpubsub.PositionOpenedEvent, func(position *models.Position) {
		log.WithField("event", "position_opened").Infof("%d x %s @ %.2f", position.Quantity, position.Key.String(), position.EntryPrice)
	})

	eventpubsub.Subscribe(eventpubsub.PositionClosedEvent, func(trade *models.Trade) {
		log.WithField("event", "position_closed").Infof("%d x %.2f strike, pnl %.2f", trade.Quantity, trade.Strike, trade.Pnl)
	})

	eventpubsub.Subscribe(eventpubsub.PositionExpiredEvent, func(trade *models.Trade) {
		log.WithField("event", "position_expired").Infof("%d x %.2f strike, pnl %.2f", trade.Quantity, trade.Strike, trade.Pnl)
	})
}

func renderSummary(summary *metrics.Summary) string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetColumnSeparator("")
	display.WriteString("Backtest Summary:\n")

	table.Append([]string{"Trades", fmt.Sprintf("%d", summary.TradeCount)})
	table.Append([]string{"Total PnL", p.Sprintf("$%.2f", summary.TotalPnl)})
	table.Append([]string{"Win Rate", fmt.Sprintf("%.1f%%", summary.WinRate)})
	table.Append([]string{"Average Win", p.Sprintf("$%.2f", summary.AverageWin)})
	table.Append([]string{"Average Loss", p.Sprintf("$%.2f", summary.AverageLoss)})
	table.Append([]string{"Profit Factor", fmt.Sprintf("%.2f", summary.ProfitFactor)})
	table.Append([]string{"Sharpe Ratio", fmt.Sprintf("%.2f", summary.SharpeRatio)})
	table.Append([]string{"Sortino Ratio", fmt.Sprintf("%.2f", summary.SortinoRatio)})
	table.Append([]string{"Max Drawdown", fmt.Sprintf("%.2f%%", summary.MaxDrawdown)})
	table.Append([]string{"Final Cash", p.Sprintf("$%.2f", summary.FinalCash)})
	table.Append([]string{"Final Equity", p.Sprintf("$%.2f", summary.FinalEquity)})

	table.Render()
	return display.String()
}

func run(args RunArgs) error {
	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Warnf("env not initialized: %v", err)
	}

	subscribeLogging()

	cfg, err := loadConfig(args.ConfigFile)
	if err != nil {
		return err
	}

	quotes, err := eventservices.LoadOptionQuotes(args.QuotesFile)
	if err != nil {
		return err
	}

	signals, err := eventservices.LoadSignalEvents(args.SignalsFile)
	if err != nil {
		return err
	}

	result, err := models.RunBacktest(quotes, signals, cfg)
	if err != nil {
		return err
	}

	summary := metrics.NewSummary(result, args.RiskFreeRate)
	fmt.Println(renderSummary(summary))

	if _, err := eventservices.ExportTradesToCsv(args.OutDir, result.ID, result.Trades); err != nil {
		return err
	}

	if _, err := eventservices.ExportEquityToCsv(args.OutDir, result.ID, result.EquityPoints); err != nil {
		return err
	}

	return nil
}
