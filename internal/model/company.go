// Package model defines the data-transfer types exchanged with the
// commercial-register backend. Optional payload fields are modeled as
// pointers and defaulted at the single point the payload is decoded.
package model

import "time"

// EntityKind distinguishes register subjects in search results.
type EntityKind string

const (
	KindCompany EntityKind = "company"
	KindPerson  EntityKind = "person"
)

// SearchHit is one row of a register search response.
type SearchHit struct {
	Regcode   string     `json:"regcode"`
	Name      string     `json:"name"`
	Kind      EntityKind `json:"kind"`
	LegalForm string     `json:"legal_form,omitempty"`
	Status    string     `json:"status,omitempty"`
	Address   string     `json:"address,omitempty"`
	NACECode  string     `json:"nace_code,omitempty"`
}

// CompanyProfile is the register's company card.
type CompanyProfile struct {
	Regcode      string     `json:"regcode"`
	Name         string     `json:"name"`
	LegalForm    string     `json:"legal_form,omitempty"`
	Status       string     `json:"status,omitempty"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	Address      string     `json:"address,omitempty"`
	NACECode     string     `json:"nace_code,omitempty"`
	NACEText     string     `json:"nace_text,omitempty"`
	Employees    *int       `json:"employees,omitempty"`

	Financials []FinancialReport `json:"financials,omitempty"`
	Officers   []Officer         `json:"officers,omitempty"`
}

// Officer is a board member or other registered official.
type Officer struct {
	Name     string     `json:"name"`
	Role     string     `json:"role,omitempty"`
	Regcode  string     `json:"regcode,omitempty"` // personal code withheld for physical persons
	Since    *time.Time `json:"since,omitempty"`
	IsActive bool       `json:"is_active"`
}

// FinancialReport is one filed annual report, figures in euros.
type FinancialReport struct {
	Year               int      `json:"year"`
	Turnover           *float64 `json:"turnover,omitempty"`
	Profit             *float64 `json:"profit,omitempty"`
	BalanceTotal       *float64 `json:"balance_total,omitempty"`
	Equity             *float64 `json:"equity,omitempty"`
	Liabilities        *float64 `json:"liabilities,omitempty"`
	CurrentAssets      *float64 `json:"current_assets,omitempty"`
	CurrentLiabilities *float64 `json:"current_liabilities,omitempty"`
	Employees          *int     `json:"employees,omitempty"`
}
