package dto

// YahooChartResponse mirrors the subset of the Yahoo Finance v8 chart API
// response the monitor consumes.
type YahooChartResponse struct {
	Chart struct {
		Result []YahooChartResult `json:"result"`
		Error  *YahooChartError   `json:"error"`
	} `json:"chart"`
}

// YahooChartError is the error object embedded in a chart response.
type YahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// YahooChartResult is one ticker's chart data.
type YahooChartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		ChartPreviousClose float64 `json:"chartPreviousClose"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []YahooQuoteIndicator `json:"quote"`
	} `json:"indicators"`
}

// YahooQuoteIndicator holds the OHLCV series. Entries may be null for
// half-formed bars, hence the pointer elements.
type YahooQuoteIndicator struct {
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}
