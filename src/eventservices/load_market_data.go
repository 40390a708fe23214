package eventservices

import (
	"fmt"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/signal-backtester/src/eventmodels"
)

// LoadOptionQuotes reads the quote table from a csv file, skipping rows that
// fail to parse, and returns the quotes sorted by quote date.
func LoadOptionQuotes(path string) ([]*eventmodels.OptionQuote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadOptionQuotes: error opening file: %w", err)
	}

	defer f.Close()

	var rows []*eventmodels.OptionQuoteDTO
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("LoadOptionQuotes: error unmarshalling file: %w", err)
	}

	quotes := make([]*eventmodels.OptionQuote, 0, len(rows))
	for i, row := range rows {
		quote, err := row.ToModel()
		if err != nil {
			log.Warnf("LoadOptionQuotes: skipping row %d: %v", i, err)
			continue
		}

		quotes = append(quotes, quote)
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].QuoteDate.Before(quotes[j].QuoteDate)
	})

	log.Infof("loaded %d quotes from %s", len(quotes), path)

	return quotes, nil
}

// LoadSignalEvents reads the signal table from a csv file, skipping rows with
// an unrecognized signal class or unparseable fields, and returns the events
// sorted by quote date with source order preserved within a date.
func LoadSignalEvents(path string) ([]*eventmodels.SignalEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadSignalEvents: error opening file: %w", err)
	}

	defer f.Close()

	var rows []*eventmodels.SignalEventDTO
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("LoadSignalEvents: error unmarshalling file: %w", err)
	}

	signals := make([]*eventmodels.SignalEvent, 0, len(rows))
	for i, row := range rows {
		signal, err := row.ToModel()
		if err != nil {
			log.Warnf("LoadSignalEvents: skipping row %d: %v", i, err)
			continue
		}

		signals = append(signals, signal)
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].QuoteDate.Before(signals[j].QuoteDate)
	})

	log.Infof("loaded %d signals from %s", len(signals), path)

	return signals, nil
}
