package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baltlens/registry-cli/internal/mvk"
	"github.com/baltlens/registry-cli/internal/session"
)

func TestParseConfirm(t *testing.T) {
	t.Parallel()

	regcode, field, value, err := parseConfirm("40003000002:board_control=yes")
	require.NoError(t, err)
	assert.Equal(t, "40003000002", regcode)
	assert.Equal(t, mvk.FieldBoardControl, field)
	assert.Equal(t, "yes", value)
}

func TestParseConfirm_ExplanationKeepsEquals(t *testing.T) {
	t.Parallel()

	regcode, field, value, err := parseConfirm("40003000002:explanation=ownership=50/50 split")
	require.NoError(t, err)
	assert.Equal(t, "40003000002", regcode)
	assert.Equal(t, mvk.FieldExplanation, field)
	assert.Equal(t, "ownership=50/50 split", value)
}

func TestParseConfirm_Invalid(t *testing.T) {
	t.Parallel()

	cases := []string{
		"no-equals-sign",
		"missing-field=yes",
		":board_control=yes",
		"40003000002:bogus_field=yes",
	}
	for _, raw := range cases {
		_, _, _, err := parseConfirm(raw)
		assert.Error(t, err, raw)
	}
}

func TestFormatClassification(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	formatClassification(&buf, session.Classification{
		Regcode:       "40003000001",
		BaselineType:  mvk.TypePartner,
		EffectiveType: mvk.TypeLinked,
		HasUnknown:    true,
		Criteria: []mvk.ControlCriteria{{
			Regcode:           "40003000002",
			Name:              "Partneris SIA",
			NACECode:          "62.02",
			SameMarket:        true,
			NeedsConfirmation: false,
			BoardControl:      mvk.AnswerYes,
			ContractControl:   mvk.AnswerUnknown,
			AgreementControl:  mvk.AnswerNo,
		}},
		Totals:    mvk.Totals{Employees: 18, Turnover: 1_560_000, Balance: 900_000},
		SizeClass: mvk.SizeSmall,
	})

	out := buf.String()
	assert.Contains(t, out, "Baseline type:")
	assert.Contains(t, out, "PARTNER")
	assert.Contains(t, out, "LINKED")
	assert.Contains(t, out, "SMALL")
	assert.Contains(t, out, "unanswered control criteria remain")
	assert.Contains(t, out, "40003000002")
	assert.Contains(t, out, "Partneris SIA")
}

func TestFormatClassification_NoCriteria(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	formatClassification(&buf, session.Classification{
		Regcode:       "40003000001",
		BaselineType:  mvk.TypeAutonomous,
		EffectiveType: mvk.TypeAutonomous,
		SizeClass:     mvk.SizeMicro,
	})

	out := buf.String()
	assert.Contains(t, out, "AUTONOMOUS")
	assert.NotContains(t, out, "REGCODE\tNAME")
}

func TestYesNo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))
}
