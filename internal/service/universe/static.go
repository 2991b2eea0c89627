package universe

import (
	"context"

	"VolScan/internal/domain/repository"
)

var majorNasdaq = []string{
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "META", "TSLA", "NVDA", "NFLX", "AMD",
	"INTC", "CMCSA", "ADBE", "PYPL", "COST", "AVGO", "PEP", "CSCO", "TMUS", "QCOM",
	"TXN", "AMGN", "ISRG", "INTU", "BKNG", "AMAT", "VRSK", "ADI", "GILD", "ADP",
	"FISV", "KLAC", "CDNS", "SNPS", "CTSH", "NXPI", "MCHP", "PAYX", "FTNT", "IDXX",
	"FAST", "CTAS", "WDAY", "ODFL", "DXCM", "ROST", "PCAR", "BKR", "ANSS", "TEAM",
	"ALGN", "VRTX", "CPRT", "CDW", "ZS", "CRWD", "MRNA", "DOCN", "OKTA", "NET",
	"DDOG", "FROG", "ASAN", "ESTC", "ZM", "PTON", "RBLX", "HOOD", "SOFI", "UPST",
}

// StaticProvider serves the bundled list of large NASDAQ names.
type StaticProvider struct{}

var _ repository.UniverseProvider = StaticProvider{}

func (StaticProvider) Name() string { return "static" }

func (StaticProvider) Provide(context.Context) ([]string, error) {
	out := make([]string, len(majorNasdaq))
	copy(out, majorNasdaq)
	return out, nil
}
