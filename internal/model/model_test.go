package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioIDRoundTrip(t *testing.T) {
	for _, id := range AllScenarios {
		got, err := ParseScenarioID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
	_, err := ParseScenarioID("scenario4")
	assert.Error(t, err)
	assert.False(t, ScenarioID(7).Valid())
}

func TestDefaultScenarios(t *testing.T) {
	set := DefaultScenarios()
	assert.Equal(t, "Current State", set.Get(ScenarioCurrent).Name)
	assert.Equal(t, "#9b59b6", set.Get(Scenario3).Color)
	for _, id := range AllScenarios {
		assert.True(t, set.Get(id).BurnRateFactor.Equal(decimal.NewFromInt(1)))
	}
	assert.Nil(t, set.Get(ScenarioID(-1)))
}

func TestScenarioReset(t *testing.T) {
	set := DefaultScenarios()
	s := set.Get(Scenario2)
	s.BurnRateFactor = decimal.RequireFromString("0.5")
	s.Incomes = []ScenarioIncome{{Amount: decimal.NewFromInt(10)}}
	s.Data = []ProjectionPoint{{}}

	s.Reset()
	assert.Empty(t, s.Incomes)
	assert.Nil(t, s.Data)
	assert.Equal(t, "Scenario 2", s.Name)
	assert.True(t, s.BurnRateFactor.Equal(decimal.NewFromInt(1)))
}

func TestScenarioSetClone(t *testing.T) {
	set := DefaultScenarios()
	set[Scenario1].Incomes = []ScenarioIncome{{Amount: decimal.NewFromInt(10)}}
	set[Scenario1].Data = []ProjectionPoint{{Balance: decimal.NewFromInt(5)}}

	c := set.Clone()
	set[Scenario1].Incomes[0].Amount = decimal.NewFromInt(99)
	set[Scenario1].Data[0].Balance = decimal.NewFromInt(99)
	set[Scenario1].Name = "renamed"

	assert.True(t, c[Scenario1].Incomes[0].Amount.Equal(decimal.NewFromInt(10)))
	assert.True(t, c[Scenario1].Data[0].Balance.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "Scenario 1", c[Scenario1].Name)
	assert.Nil(t, (*Scenario)(nil).Clone())
}

func TestParseActualKind(t *testing.T) {
	k, err := ParseActualKind("expenses")
	require.NoError(t, err)
	assert.Equal(t, ActualExpense, k)
	k, err = ParseActualKind("income")
	require.NoError(t, err)
	assert.Equal(t, ActualIncome, k)
	_, err = ParseActualKind("other")
	assert.Error(t, err)
}

func TestActualEntryBefore(t *testing.T) {
	a := ActualEntry{Month: 11, Year: 2024}
	b := ActualEntry{Month: 0, Year: 2025}
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, ActualEntry{Month: 1, Year: 2025}.Before(ActualEntry{Month: 2, Year: 2025}))
}

func TestNeutralSeasonalPatterns(t *testing.T) {
	p := NeutralSeasonalPatterns()
	for _, f := range p {
		assert.InDelta(t, 1.0, f.ExpenseFactor, 1e-9)
		assert.Equal(t, 0, f.SampleSize)
	}
}
