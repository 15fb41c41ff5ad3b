package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"GBMForecast/internal/model"
)

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func pct(v float64) string {
	return decimal.NewFromFloat(v * 100).StringFixed(2)
}

// FormatForecastReport formats a finished run into a Telegram HTML message.
func FormatForecastReport(res *model.Result, series *model.PriceSeries, hist model.HistoryContext, now time.Time) string {
	var b strings.Builder
	est, s := res.Estimate, res.Summary

	b.WriteString(fmt.Sprintf("📈 <b>%s Monte Carlo forecast</b> | %s\n\n", html.EscapeString(res.Symbol), now.Format(time.DateOnly)))

	if first, last := series.Span(); !first.IsZero() {
		b.WriteString(fmt.Sprintf("History: %s → %s (%d closes)\n",
			first.Format(time.DateOnly), last.Format(time.DateOnly), series.Len()))
	}
	b.WriteString(fmt.Sprintf("Last price: $%s\n", money(est.LastPrice)))
	b.WriteString(fmt.Sprintf("Daily μ: %s%% | σ: %s%%\n", pct(est.Mu), pct(est.Sigma)))
	if hist.High52w > 0 {
		b.WriteString(fmt.Sprintf("52w range: $%s ~ $%s (position %s%%)\n", money(hist.Low52w), money(hist.High52w), pct(hist.Position52w)))
	}
	if hist.SMA20 > 0 {
		b.WriteString(fmt.Sprintf("SMA20: $%s", money(hist.SMA20)))
		if hist.SMA50 > 0 {
			b.WriteString(fmt.Sprintf(" | SMA50: $%s", money(hist.SMA50)))
		}
		b.WriteString(fmt.Sprintf(" | RSI14: %s\n", decimal.NewFromFloat(hist.RSI14).StringFixed(0)))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("🎲 <b>%d paths × %d days</b>\n", res.Params.NumSimulations, res.Params.HorizonDays))
	b.WriteString(fmt.Sprintf("  Mean final price: $%s\n", money(s.MeanFinalPrice)))
	b.WriteString(fmt.Sprintf("  %s%% interval: [$%s, $%s]\n",
		decimal.NewFromFloat(s.Confidence*100).Round(2).String(), money(s.LowerPercentile), money(s.UpperPercentile)))
	b.WriteString(fmt.Sprintf("  Range: [$%s, $%s]\n", money(s.MinFinalPrice), money(s.MaxFinalPrice)))
	b.WriteString(fmt.Sprintf("  P(below today): %s%%\n", pct(s.ProbabilityBelowStart)))

	return b.String()
}

// FormatFailure formats a failed run.
func FormatFailure(symbol string, err error) string {
	return fmt.Sprintf("❌ <b>%s forecast failed</b>\n%s", html.EscapeString(symbol), html.EscapeString(err.Error()))
}

// FormatHelp lists the commands understood in watch mode.
func FormatHelp() string {
	return "Commands:\n• /forecast SYMBOL\n• /symbols"
}
