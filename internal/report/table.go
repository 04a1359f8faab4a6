// Package report renders scan results and progress for the console.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/ternarybob/movers/internal/models"
	"github.com/ternarybob/movers/internal/pipeline"
)

// ScoreLegend describes the default activity score formula.
const ScoreLegend = "Activity Score = Volume(M) + |Price Change%|*8 + Intraday Volatility%*4"

var tableHeader = []string{
	"#", "Symbol", "Exchange", "Date", "Open", "High", "Low", "Close",
	"Change", "Change%", "Volume", "Volatility%", "Activity",
}

// WriteTable renders ranked stocks as an aligned table.
func WriteTable(w io.Writer, stocks []models.RankedStock) error {
	if len(stocks) == 0 {
		_, err := fmt.Fprintln(w, "No data to display.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader, "\t"))
	for i, s := range stocks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t$%s\t$%s\t$%s\t$%s\t%s\t%s%%\t%s\t%s%%\t%s\n",
			i+1,
			s.Symbol,
			s.Exchange,
			s.Date,
			s.Open.StringFixed(2),
			s.High.StringFixed(2),
			s.Low.StringFixed(2),
			s.Close.StringFixed(2),
			s.PriceChange.StringFixed(2),
			s.PriceChangePercent.StringFixed(2),
			humanize.Comma(s.Volume),
			s.VolatilityPercent.StringFixed(2),
			s.ActivityScore.StringFixed(2),
		)
	}
	return tw.Flush()
}

// WriteBreakdown renders the number of stocks per exchange.
func WriteBreakdown(w io.Writer, breakdown []models.ExchangeCount) error {
	if _, err := fmt.Fprintln(w, "BREAKDOWN BY EXCHANGE:"); err != nil {
		return err
	}
	for _, c := range breakdown {
		if _, err := fmt.Fprintf(w, "  %s: %d stocks\n", c.Exchange, c.Count); err != nil {
			return err
		}
	}
	return nil
}

// WriteResult renders the full scan summary: title, table, breakdown and legend.
func WriteResult(w io.Writer, result *pipeline.Result) error {
	rule := strings.Repeat("=", 120)
	fmt.Fprintf(w, "\n%s\nTOP %d MOST ACTIVE STOCKS FOR %s\n%s\n", rule, len(result.Stocks), result.Date, rule)
	if result.Interrupted {
		fmt.Fprintf(w, "Scan interrupted: partial results from %s of %s instruments\n",
			humanize.Comma(int64(result.Fetched+result.Skipped)), humanize.Comma(int64(result.Listed)))
	}

	if err := WriteTable(w, result.Stocks); err != nil {
		return err
	}
	if len(result.Stocks) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("-", 50))
	if err := WriteBreakdown(w, result.Breakdown); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", ScoreLegend)
	return err
}

// WriteListing renders per-exchange instrument counts and their total.
func WriteListing(w io.Writer, counts []models.ExchangeCount) error {
	fmt.Fprintln(w, "Stock counts by exchange:")
	total := 0
	for _, c := range counts {
		total += c.Count
		fmt.Fprintf(w, "  %s: %s stocks\n", c.Exchange, humanize.Comma(int64(c.Count)))
	}
	_, err := fmt.Fprintf(w, "  TOTAL: %s stocks\n", humanize.Comma(int64(total)))
	return err
}

// WriteJSON renders the result as indented JSON.
func WriteJSON(w io.Writer, result *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
