package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ScenarioID identifies one of the four fixed scenarios.
type ScenarioID int

const (
	ScenarioCurrent ScenarioID = iota
	Scenario1
	Scenario2
	Scenario3

	scenarioCount
)

// AllScenarios lists every scenario in display order.
var AllScenarios = [scenarioCount]ScenarioID{ScenarioCurrent, Scenario1, Scenario2, Scenario3}

var scenarioKeys = [scenarioCount]string{"current", "scenario1", "scenario2", "scenario3"}

// String returns the stable key used in snapshots and URLs.
func (id ScenarioID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("scenario(%d)", int(id))
	}
	return scenarioKeys[id]
}

// Valid reports whether id names one of the fixed scenarios.
func (id ScenarioID) Valid() bool {
	return id >= 0 && id < scenarioCount
}

// ParseScenarioID maps a key such as "scenario2" to its ID.
func ParseScenarioID(s string) (ScenarioID, error) {
	for i, k := range scenarioKeys {
		if k == s {
			return ScenarioID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown scenario %q", s)
}

// ScenarioIncome is a one-time income injected into a projection.
type ScenarioIncome struct {
	Date   time.Time
	Amount decimal.Decimal
}

// ProjectionPoint is one month of a forecast. Index 0 is the anchor.
type ProjectionPoint struct {
	Date     time.Time
	Balance  decimal.Decimal
	Expenses decimal.Decimal
	Income   decimal.Decimal
}

// Scenario is a named forecast variant.
type Scenario struct {
	ID             ScenarioID
	Name           string
	Color          string
	Incomes        []ScenarioIncome
	BurnRateFactor decimal.Decimal
	Data           []ProjectionPoint
}

// Reset clears incomes, projection data and burn rate, keeping identity.
func (s *Scenario) Reset() {
	s.Incomes = nil
	s.Data = nil
	s.BurnRateFactor = decimal.NewFromInt(1)
}

// Clone returns a copy that shares no slices with s.
func (s *Scenario) Clone() *Scenario {
	if s == nil {
		return nil
	}
	c := *s
	c.Incomes = append([]ScenarioIncome(nil), s.Incomes...)
	c.Data = append([]ProjectionPoint(nil), s.Data...)
	return &c
}

// ScenarioSet always holds exactly one scenario per ScenarioID.
type ScenarioSet [scenarioCount]*Scenario

// DefaultScenarios returns the baseline and three editable variants.
func DefaultScenarios() ScenarioSet {
	names := [scenarioCount]string{"Current State", "Scenario 1", "Scenario 2", "Scenario 3"}
	colors := [scenarioCount]string{"#3498db", "#2ecc71", "#e74c3c", "#9b59b6"}
	var set ScenarioSet
	for _, id := range AllScenarios {
		set[id] = &Scenario{
			ID:             id,
			Name:           names[id],
			Color:          colors[id],
			BurnRateFactor: decimal.NewFromInt(1),
		}
	}
	return set
}

// Get returns the scenario for id, or nil when id is out of range.
func (s *ScenarioSet) Get(id ScenarioID) *Scenario {
	if !id.Valid() {
		return nil
	}
	return s[id]
}

// Clone copies every scenario in the set.
func (s ScenarioSet) Clone() ScenarioSet {
	var out ScenarioSet
	for i, sc := range s {
		out[i] = sc.Clone()
	}
	return out
}
