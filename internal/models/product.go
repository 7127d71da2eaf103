package models

// Platform identifies which marketplace a value belongs to.
type Platform string

const (
	PlatformFlipkart Platform = "flipkart"
	PlatformAmazon   Platform = "amazon"
)

// WinnerTie marks a comparison where neither product came out ahead.
const WinnerTie = "tie"

type Review struct {
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
}

// AIBreakdown holds the four sub-scores behind an AI score. The backend
// caps them at 40, 30, 20 and 10 points respectively.
type AIBreakdown struct {
	RatingScore    int `json:"rating_score"`
	SentimentScore int `json:"sentiment_score"`
	CategoryScore  int `json:"category_score"`
	SpecsScore     int `json:"specs_score"`
}

// Product is one marketplace listing as extracted by the analysis backend.
// Instances are treated as immutable once received.
type Product struct {
	Title           string             `json:"title,omitempty"`
	Price           string             `json:"price,omitempty"`
	Rating          *float64           `json:"rating,omitempty"`
	Image           string             `json:"image,omitempty"`
	URL             string             `json:"url,omitempty"`
	RAM             string             `json:"ram,omitempty"`
	Storage         string             `json:"storage,omitempty"`
	Display         string             `json:"display,omitempty"`
	Processor       string             `json:"processor,omitempty"`
	Camera          string             `json:"camera,omitempty"`
	Battery         string             `json:"battery,omitempty"`
	CategoryRatings map[string]float64 `json:"category_ratings,omitempty"`
	Reviews         []Review           `json:"reviews,omitempty"`
	AIScore         *int               `json:"ai_score,omitempty"`
	AIVerdict       string             `json:"ai_verdict,omitempty"`
	AIReasons       []string           `json:"ai_reasons,omitempty"`
	AIBreakdown     *AIBreakdown       `json:"ai_breakdown,omitempty"`
}

// Specs returns the specification attributes that were actually extracted.
func (p *Product) Specs() map[string]string {
	specs := make(map[string]string)
	for name, value := range map[string]string{
		"ram":       p.RAM,
		"storage":   p.Storage,
		"display":   p.Display,
		"processor": p.Processor,
		"camera":    p.Camera,
		"battery":   p.Battery,
	} {
		if value != "" {
			specs[name] = value
		}
	}
	return specs
}

type PriceDifference struct {
	Amount     float64  `json:"amount"`
	CheaperOn  Platform `json:"cheaper_on"`
	Percentage float64  `json:"percentage"`
}

// ComparisonResult is the outcome of one comparison request. At least one
// product slot is populated on every result this system commits; it is
// never mutated after creation.
type ComparisonResult struct {
	Flipkart        *Product         `json:"flipkart,omitempty"`
	Amazon          *Product         `json:"amazon,omitempty"`
	Winner          string           `json:"winner,omitempty"`
	PriceDifference *PriceDifference `json:"price_difference,omitempty"`
	Status          string           `json:"status,omitempty"`
}

// Product returns the listing for the given platform, or nil.
func (r *ComparisonResult) Product(platform Platform) *Product {
	switch platform {
	case PlatformFlipkart:
		return r.Flipkart
	case PlatformAmazon:
		return r.Amazon
	}
	return nil
}

// HasProduct reports whether at least one product slot is populated.
func (r *ComparisonResult) HasProduct() bool {
	return r.Flipkart != nil || r.Amazon != nil
}
