package model

// FlagSeverity orders red flags for display.
type FlagSeverity string

const (
	SeverityHigh   FlagSeverity = "high"
	SeverityMedium FlagSeverity = "medium"
	SeverityLow    FlagSeverity = "low"
)

// RedFlag is a backend-detected risk indicator.
type RedFlag struct {
	Code        string       `json:"code"`
	Severity    FlagSeverity `json:"severity"`
	Description string       `json:"description,omitempty"`
}

// CompanyAnalytics is the backend's derived analytics payload: trust score
// and red flags are computed server-side and passed through for display.
type CompanyAnalytics struct {
	Regcode    string    `json:"regcode"`
	TrustScore *float64  `json:"trust_score,omitempty"` // 0..100
	RedFlags   []RedFlag `json:"red_flags,omitempty"`
}

// Procurement is one public-procurement award involving the company.
type Procurement struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Buyer      string  `json:"buyer,omitempty"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency,omitempty"`
	AwardedAt  string  `json:"awarded_at,omitempty"` // ISO date as published
	Status     string  `json:"status,omitempty"`
	IsSupplier bool    `json:"is_supplier"`
}
