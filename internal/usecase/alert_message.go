package usecase

import (
	"fmt"
	"html"
	"strings"

	"VolScan/internal/domain/models"
)

const alertTimeLayout = "2006-01-02 15:04:05"

// FormatAlertMessage renders an alert as Telegram-flavoured HTML.
func FormatAlertMessage(a models.Alert, threshold float64) string {
	glyph := "⚠️"
	if a.Severity == models.SeverityCritical {
		glyph = "🚨"
	}
	direction := "📉 DOWN"
	if a.Direction == models.DirectionUp {
		direction = "📈 UP"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>NASDAQ Volatility Alert</b> %s\n\n", glyph, glyph)
	fmt.Fprintf(&b, "<b>Ticker:</b> %s\n", html.EscapeString(a.Ticker))
	fmt.Fprintf(&b, "<b>Z-score:</b> %.2f\n", a.ZScore)
	fmt.Fprintf(&b, "<b>Price Move:</b> %+.2f%%\n", a.PercentMove)
	fmt.Fprintf(&b, "<b>Direction:</b> %s\n", direction)
	fmt.Fprintf(&b, "<b>Time:</b> %s\n", a.Timestamp.Format(alertTimeLayout))
	fmt.Fprintf(&b, "<b>Current Price:</b> $%.2f\n\n", a.LatestPrice)
	fmt.Fprintf(&b, "<i>Unusual volatility detected: |Z| exceeds %.1f.</i>", threshold)
	return b.String()
}
