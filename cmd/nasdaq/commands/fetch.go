package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/nasdaq/internal/nasdaq"
)

// fetchFunc performs one upstream call with a wired client
type fetchFunc func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error)

// newFetchCmd builds a one-shot fetch command that renders its result
func newFetchCmd(use, short string, nargs cobra.PositionalArgs, fetch fetchFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  nargs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			ctx, cancel := commandContext(cmd.Context(), d.cfg)
			defer cancel()

			name := strings.Fields(use)[0]
			d.log.WithFields(map[string]interface{}{
				"command": name,
				"args":    args,
			}).Debug("Fetching")

			result, err := fetch(ctx, d.client, args)
			if err != nil {
				d.log.WithError(err).WithField("command", name).Error("Fetch failed")
				return err
			}
			return render(result)
		},
	}
}

var (
	historicalDays  int
	historicalClass string
	optionMoney     string
	filingType      string
	newsDays        int
	pressDays       int
	earningsDays    int
)

func init() {
	symbol := cobra.ExactArgs(1)

	profileCmd := newFetchCmd("profile [symbol]", "Company profile", symbol,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.CompanyProfile(ctx, args[0])
		})

	revenueCmd := newFetchCmd("revenue [symbol]", "Quarterly revenue, EPS and dividends", symbol,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.RevenueEarnings(ctx, args[0])
		})

	ratiosCmd := newFetchCmd("ratios [symbol]", "Financial ratios and key statistics", symbol,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.FinancialRatios(ctx, args[0])
		})

	historicalCmd := newFetchCmd("historical [symbol]", "Daily OHLCV history", symbol,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			class, err := nasdaq.ParseAssetClass(historicalClass)
			if err != nil {
				return nil, err
			}
			return c.HistoricalQuotes(ctx, args[0], historicalDays, class)
		})
	historicalCmd.Flags().IntVar(&historicalDays, "days", nasdaq.DefaultHistoricalDays, "number of trading days")
	historicalCmd.Flags().StringVar(&historicalClass, "assetclass", string(nasdaq.AssetStocks), "asset class (stocks|etf)")

	dividendsCmd := newFetchCmd("dividends [symbol]", "Dividend history", symbol,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.DividendHistory(ctx, args[0])
		})

	optionsCmd := newFetchCmd("options [symbol]", "Option chain (calls and puts)", symbol,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.OptionChain(ctx, args[0], optionMoney)
		})
	optionsCmd.Flags().StringVar(&optionMoney, "money", "", "moneyness filter (default ALL)")

	shortCmd := newFetchCmd("short-interest [symbol]", "Short interest by settlement date", symbol,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.ShortInterest(ctx, args[0])
		})

	screenerCmd := newFetchCmd("screener", "Stock and ETF screener", cobra.NoArgs,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.Screener(ctx)
		})

	earningsCmd := newFetchCmd("earnings", "Earnings calendar for the coming days", cobra.NoArgs,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.EarningsCalendar(ctx, earningsDays)
		})
	earningsCmd.Flags().IntVar(&earningsDays, "days", nasdaq.DefaultEarningsDays, "calendar days to scan")

	newsCmd := newFetchCmd("news [symbol]", "Recent news articles", symbol,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.StockNews(ctx, args[0], newsDays)
		})
	newsCmd.Flags().IntVar(&newsDays, "days", nasdaq.DefaultNewsDays, "look-back window in days")

	pressCmd := newFetchCmd("press [symbol]", "Recent press releases", symbol,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.PressReleases(ctx, args[0], pressDays)
		})
	pressCmd.Flags().IntVar(&pressDays, "days", nasdaq.DefaultPressReleaseDays, "look-back window in days")

	insiderCmd := newFetchCmd("insider [symbol]", "Insider trading activity", symbol,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.InsiderTrading(ctx, args[0])
		})

	institutionalCmd := newFetchCmd("institutional [symbol]", "Institutional ownership", symbol,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.InstitutionalHoldings(ctx, args[0])
		})

	filingsCmd := newFetchCmd("filings [symbol]", "SEC filings", symbol,
		func(ctx context.Context, c *nasdaq.Client, args []string) (interface{}, error) {
			return c.SECFilings(ctx, args[0], filingType)
		})
	filingsCmd.Flags().StringVar(&filingType, "type", "", "form type filter (default ALL)")

	rootCmd.AddCommand(
		profileCmd, revenueCmd, ratiosCmd,
		historicalCmd, dividendsCmd, optionsCmd, shortCmd,
		screenerCmd, earningsCmd,
		newsCmd, pressCmd,
		insiderCmd, institutionalCmd,
		filingsCmd,
	)
}
