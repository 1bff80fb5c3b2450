// Package mvk models EU SME (MVK) size-classification scenarios and the
// session-local control-criteria confirmation workflow built on top of them.
// The classification itself is computed by the register backend; this package
// consumes the result, seeds the manual confirmation list, and re-derives the
// effective company type from user answers.
package mvk

import "strings"

// CompanyType is the backend-determined SME relationship baseline.
type CompanyType string

const (
	TypeAutonomous CompanyType = "AUTONOMOUS"
	TypePartner    CompanyType = "PARTNER"
	TypeLinked     CompanyType = "LINKED"
)

// RelatedEntity is one row of a classification scenario: a partner
// (25–50% ownership, section A) or a linked entity (>50%, section B).
type RelatedEntity struct {
	Regcode  string `json:"regcode"`
	Name     string `json:"name"`
	NACECode string `json:"nace_code,omitempty"`

	// Backend hints, present on section B rows only. When set they take
	// precedence over the local 2-digit NACE heuristic: the backend may
	// know more than an industry-prefix match can tell us.
	SameMarket        *bool `json:"same_market,omitempty"`
	NeedsConfirmation *bool `json:"needs_confirmation,omitempty"`

	// Relation is "owner" or "subsidiary" for section B rows.
	Relation string `json:"relation,omitempty"`

	Employees        float64 `json:"employees"`
	Turnover         float64 `json:"turnover"`
	Balance          float64 `json:"balance"`
	OwnershipPercent float64 `json:"ownership_percent"`
}

// Relation values for section B entities.
const (
	RelationOwner      = "owner"
	RelationSubsidiary = "subsidiary"
)

// FlaggedEntity is an entry of the backend's explicit needs-confirmation
// list: an entity it could not confidently classify by industry match.
type FlaggedEntity struct {
	Regcode  string `json:"regcode"`
	Name     string `json:"name"`
	NACECode string `json:"nace_code,omitempty"`
}

// SectionA holds partner entities in backend order.
type SectionA struct {
	Partners []RelatedEntity `json:"partners"`
}

// SectionB holds linked entities in backend order.
type SectionB struct {
	Entities []RelatedEntity `json:"entities"`
}

// Scenario is the pre-computed classification payload received from the
// register backend. It is consumed as-is; nothing in this repository
// recomputes the partner/linked determination.
type Scenario struct {
	CompanyType       CompanyType     `json:"company_type"`
	CompanyNACE       string          `json:"company_nace,omitempty"`
	HasPartners       bool            `json:"has_partners"`
	HasLinked         bool            `json:"has_linked"`
	SectionA          SectionA        `json:"section_a"`
	SectionB          SectionB        `json:"section_b"`
	NeedsConfirmation []FlaggedEntity `json:"needs_confirmation,omitempty"`
}

// Normalize defaults absent payload fields in place. It is called once at
// the point the payload is decoded; every field is treated as potentially
// missing rather than rejected.
func (s *Scenario) Normalize() {
	if s == nil {
		return
	}
	switch s.CompanyType {
	case TypeAutonomous, TypePartner, TypeLinked:
	default:
		s.CompanyType = TypeAutonomous
	}
	s.CompanyNACE = strings.TrimSpace(s.CompanyNACE)
	s.HasPartners = len(s.SectionA.Partners) > 0
	s.HasLinked = len(s.SectionB.Entities) > 0
}
