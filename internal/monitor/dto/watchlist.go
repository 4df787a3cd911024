package dto

// WatchlistYAMLResponse carries the current watchlist rendered as YAML.
type WatchlistYAMLResponse struct {
	YAML string `json:"yaml"`
}

// ApplyWatchlistResponse confirms a watchlist replacement.
type ApplyWatchlistResponse struct {
	Status  string   `json:"status"`
	Tickers []string `json:"tickers"`
}
