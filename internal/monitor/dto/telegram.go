package dto

// TelegramSetupResponse carries the one-time webhook registration link.
type TelegramSetupResponse struct {
	Instructions string `json:"instructions"`
	SetupURL     string `json:"setup_url"`
	WebhookURL   string `json:"webhook_url"`
}

// PromptResponse carries the watchlist config-generation prompt.
type PromptResponse struct {
	Prompt string `json:"prompt"`
	Usage  string `json:"usage"`
}
