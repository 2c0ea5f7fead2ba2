package api

// Roles accepted in prior chat turns.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// PriceNotAvailable is reported when the quote service has no USD price.
const PriceNotAvailable = "not available"

// ChatRequest represents an incoming chat request
type ChatRequest struct {
	Message  string    `binding:"required"      json:"message"`
	Messages []Message `binding:"omitempty,dive" json:"messages"`
}

// Message represents a single prior chat turn
type Message struct {
	Role    string `binding:"required,oneof=system user assistant" json:"role"`
	Content string `json:"content"`
}

// ChatResponse carries the first completion choice
type ChatResponse struct {
	Text string `json:"text"`
}

// ResearchRequest for /api/research
type ResearchRequest struct {
	Query string `binding:"required" json:"query"`
}

// ResearchResponse carries the formatted search digest
type ResearchResponse struct {
	Answer string `json:"answer"`
}

// FetchURLRequest for /api/fetch-url
type FetchURLRequest struct {
	URL string `binding:"required,url" json:"url"`
}

// FetchURLResponse carries extracted page text
type FetchURLResponse struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GenerateImageRequest for /api/generate-image
type GenerateImageRequest struct {
	Prompt string `binding:"required" json:"prompt"`
}

// GenerateImageResponse carries the generated image
type GenerateImageResponse struct {
	ImageBase64 string `json:"imageBase64"`
}

// GenerateVideoRequest for /api/generate-video
type GenerateVideoRequest struct {
	Prompt string `binding:"required" json:"prompt"`
}

// GenerateVideoResponse always has a null videoUrl until a provider is wired
type GenerateVideoResponse struct {
	VideoURL *string `json:"videoUrl"`
	Message  string  `json:"message"`
}

// CryptoPriceRequest is bound from the query string
type CryptoPriceRequest struct {
	Symbol string `form:"symbol" json:"symbol"`
}

// CryptoPriceResponse carries a USD quote. Price is a number or PriceNotAvailable.
type CryptoPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  any    `json:"price"`
}

// CryptoTopListRequest has no parameters
type CryptoTopListRequest struct{}

// CryptoTopListEntry is one coin of the market-cap ranking; every field may be absent.
type CryptoTopListEntry struct {
	Name      *string  `json:"name,omitempty"`
	Symbol    *string  `json:"symbol,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	MarketCap *float64 `json:"marketCap,omitempty"`
}
