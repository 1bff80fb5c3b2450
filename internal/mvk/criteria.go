package mvk

// Answer is a user's response to one control test.
type Answer string

const (
	AnswerYes     Answer = "yes"
	AnswerNo      Answer = "no"
	AnswerUnknown Answer = "unknown"
)

// ParseAnswer coerces free-form input to an Answer. Anything unrecognized
// counts as unknown; the confirmation model never rejects input.
func ParseAnswer(s string) Answer {
	switch Answer(s) {
	case AnswerYes, AnswerNo:
		return Answer(s)
	default:
		return AnswerUnknown
	}
}

// Field names one updatable slot of a ControlCriteria record.
type Field string

const (
	FieldBoardControl     Field = "board_control"
	FieldContractControl  Field = "contract_control"
	FieldAgreementControl Field = "agreement_control"
	FieldExplanation      Field = "explanation"
)

// ControlCriteria is the per-entity confirmation record. It lives only in
// the user's session: rebuilt whenever a new scenario loads, never persisted.
type ControlCriteria struct {
	Regcode           string `json:"regcode"`
	Name              string `json:"name"`
	NACECode          string `json:"nace_code,omitempty"`
	SameMarket        bool   `json:"same_market"`
	NeedsConfirmation bool   `json:"needs_confirmation"`
	BoardControl      Answer `json:"board_control"`
	ContractControl   Answer `json:"contract_control"`
	AgreementControl  Answer `json:"agreement_control"`
	Explanation       string `json:"explanation,omitempty"`
}

// CriteriaList is the ordered, regcode-keyed confirmation working list.
// Order is stable and drives the displayed table: partners first, then
// linked entities not already present, then explicitly flagged entities.
type CriteriaList struct {
	records []ControlCriteria
}

// BuildCriteria constructs the confirmation list for a loaded scenario.
// Entities without a registration code cannot be keyed and are skipped
// (physical persons and foreign entities; a known data-quality caveat).
func BuildCriteria(s *Scenario) *CriteriaList {
	l := &CriteriaList{}
	if s == nil {
		return l
	}

	seen := make(map[string]struct{})
	add := func(rec ControlCriteria) {
		if rec.Regcode == "" {
			return
		}
		if _, ok := seen[rec.Regcode]; ok {
			return
		}
		seen[rec.Regcode] = struct{}{}
		l.records = append(l.records, rec)
	}

	for _, p := range s.SectionA.Partners {
		sm := SameMarket(s.CompanyNACE, p.NACECode)
		add(ControlCriteria{
			Regcode:           p.Regcode,
			Name:              p.Name,
			NACECode:          p.NACECode,
			SameMarket:        sm,
			NeedsConfirmation: heuristicNeedsConfirmation(sm, p.NACECode),
			BoardControl:      AnswerUnknown,
			ContractControl:   AnswerUnknown,
			AgreementControl:  AnswerUnknown,
		})
	}

	for _, e := range s.SectionB.Entities {
		sm := SameMarket(s.CompanyNACE, e.NACECode)
		if e.SameMarket != nil {
			sm = *e.SameMarket
		}
		nc := heuristicNeedsConfirmation(sm, e.NACECode)
		if e.NeedsConfirmation != nil {
			nc = *e.NeedsConfirmation
		}
		add(ControlCriteria{
			Regcode:           e.Regcode,
			Name:              e.Name,
			NACECode:          e.NACECode,
			SameMarket:        sm,
			NeedsConfirmation: nc,
			BoardControl:      AnswerUnknown,
			ContractControl:   AnswerUnknown,
			AgreementControl:  AnswerUnknown,
		})
	}

	// The explicit list is an unconditional backend override.
	for _, f := range s.NeedsConfirmation {
		add(ControlCriteria{
			Regcode:           f.Regcode,
			Name:              f.Name,
			NACECode:          f.NACECode,
			SameMarket:        false,
			NeedsConfirmation: true,
			BoardControl:      AnswerUnknown,
			ContractControl:   AnswerUnknown,
			AgreementControl:  AnswerUnknown,
		})
	}

	return l
}

// Len reports the number of records.
func (l *CriteriaList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.records)
}

// Records returns a copy of the records in display order.
func (l *CriteriaList) Records() []ControlCriteria {
	if l == nil || len(l.records) == 0 {
		return nil
	}
	out := make([]ControlCriteria, len(l.records))
	copy(out, l.records)
	return out
}

// Get returns the record for a registration code.
func (l *CriteriaList) Get(regcode string) (ControlCriteria, bool) {
	if l == nil {
		return ControlCriteria{}, false
	}
	for _, rec := range l.records {
		if rec.Regcode == regcode {
			return rec, true
		}
	}
	return ControlCriteria{}, false
}

// Update sets one field of the record keyed by regcode. Control fields are
// coerced through ParseAnswer; explanation is stored verbatim, unvalidated.
// Exactly one record changes; an unknown regcode or field is a no-op, never
// an error.
func (l *CriteriaList) Update(regcode string, field Field, value string) {
	if l == nil {
		return
	}
	for i := range l.records {
		if l.records[i].Regcode != regcode {
			continue
		}
		switch field {
		case FieldBoardControl:
			l.records[i].BoardControl = ParseAnswer(value)
		case FieldContractControl:
			l.records[i].ContractControl = ParseAnswer(value)
		case FieldAgreementControl:
			l.records[i].AgreementControl = ParseAnswer(value)
		case FieldExplanation:
			l.records[i].Explanation = value
		}
		return
	}
}

// HasAnyYes reports whether any of the three control tests for the given
// entity is confirmed.
func (l *CriteriaList) HasAnyYes(regcode string) bool {
	rec, ok := l.Get(regcode)
	if !ok {
		return false
	}
	return rec.BoardControl == AnswerYes ||
		rec.ContractControl == AnswerYes ||
		rec.AgreementControl == AnswerYes
}

// HasUnknown reports whether any entity still has an unanswered control test.
func (l *CriteriaList) HasUnknown() bool {
	if l == nil {
		return false
	}
	for _, rec := range l.records {
		if rec.BoardControl == AnswerUnknown ||
			rec.ContractControl == AnswerUnknown ||
			rec.AgreementControl == AnswerUnknown {
			return true
		}
	}
	return false
}

// EffectiveType derives the effective company type from current answers.
// A single confirmed control criterion anywhere in the list elevates the
// whole company to LINKED, regardless of which entity or test triggered it.
// Recomputed fresh on every call: clearing the last yes drops the type back
// to the backend baseline.
func (l *CriteriaList) EffectiveType(baseline CompanyType) CompanyType {
	if l == nil {
		return baseline
	}
	for _, rec := range l.records {
		if rec.BoardControl == AnswerYes ||
			rec.ContractControl == AnswerYes ||
			rec.AgreementControl == AnswerYes {
			return TypeLinked
		}
	}
	return baseline
}
