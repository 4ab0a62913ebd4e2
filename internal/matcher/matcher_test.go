package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchAlertBeatsUnrelatedPart(t *testing.T) {
	alerts := []Alert{
		{ID: 10, PartID: 1, Keywords: []string{"bumper"}, IsActive: true},
	}
	parts := []Part{
		{ID: 1, Keywords: nil},
		{ID: 2, Keywords: []string{"bumper"}},
	}

	result := Match("Front Bumper Chrome", alerts, parts)
	require.NotNil(t, result.PartID)
	require.NotNil(t, result.AlertID)
	assert.Equal(t, uint(1), *result.PartID)
	assert.Equal(t, uint(10), *result.AlertID)
}

func TestMatchInactiveAlertExcluded(t *testing.T) {
	alerts := []Alert{
		{ID: 10, PartID: 1, Keywords: []string{"bumper"}, IsActive: false},
	}
	parts := []Part{
		{ID: 2, Keywords: []string{"bumper"}},
	}

	result := Match("Front Bumper Chrome", alerts, parts)
	require.NotNil(t, result.PartID)
	assert.Equal(t, uint(2), *result.PartID)
	assert.Nil(t, result.AlertID)
}

func TestMatchFallsBackToParts(t *testing.T) {
	alerts := []Alert{
		{ID: 10, PartID: 1, Keywords: []string{"gearbox"}, IsActive: true},
	}
	parts := []Part{
		{ID: 3, Keywords: []string{"headlight"}},
	}

	result := Match("Headlight Assembly Left", alerts, parts)
	require.NotNil(t, result.PartID)
	assert.Equal(t, uint(3), *result.PartID)
	assert.Nil(t, result.AlertID)
}

func TestMatchFirstAlertWins(t *testing.T) {
	alerts := []Alert{
		{ID: 10, PartID: 1, Keywords: []string{"chrome"}, IsActive: true},
		{ID: 20, PartID: 2, Keywords: []string{"bumper"}, IsActive: true},
	}

	result := Match("Front Bumper Chrome", alerts, nil)
	require.NotNil(t, result.AlertID)
	assert.Equal(t, uint(10), *result.AlertID)
	assert.Equal(t, uint(1), *result.PartID)
}

func TestMatchCaseInsensitive(t *testing.T) {
	alerts := []Alert{
		{ID: 10, PartID: 1, Keywords: []string{"BUMPER"}, IsActive: true},
	}

	result := Match("front bumper chrome", alerts, nil)
	assert.NotNil(t, result.AlertID)
}

func TestMatchSubstringNotTokenized(t *testing.T) {
	// Containment is plain substring: "light" matches "Headlights".
	parts := []Part{
		{ID: 1, Keywords: []string{"light"}},
	}

	result := Match("Pair of Headlights", nil, parts)
	assert.NotNil(t, result.PartID)
}

func TestMatchNoMatch(t *testing.T) {
	alerts := []Alert{
		{ID: 10, PartID: 1, Keywords: []string{"bumper"}, IsActive: true},
	}
	parts := []Part{
		{ID: 1, Keywords: []string{"gearbox"}},
	}

	result := Match("Windscreen Wiper Motor", alerts, parts)
	assert.Nil(t, result.PartID)
	assert.Nil(t, result.AlertID)
}

func TestMatchEmptyKeywordSets(t *testing.T) {
	alerts := []Alert{
		{ID: 10, PartID: 1, Keywords: nil, IsActive: true},
		{ID: 11, PartID: 1, Keywords: []string{""}, IsActive: true},
	}
	parts := []Part{
		{ID: 1, Keywords: []string{}},
	}

	result := Match("Anything At All", alerts, parts)
	assert.Nil(t, result.PartID)
	assert.Nil(t, result.AlertID)
}

func TestMatchEmptyInputs(t *testing.T) {
	result := Match("Front Bumper", nil, nil)
	assert.Nil(t, result.PartID)
	assert.Nil(t, result.AlertID)
}
