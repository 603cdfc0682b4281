package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBudget(t *testing.T) {
	doc, err := Generate(KindBudget, Fields{FamilyName: "Rivera", MonthlyIncome: "$4,200"})
	require.NoError(t, err)

	assert.Equal(t, "family-budget.txt", doc.Filename)
	assert.Contains(t, doc.Content, "RIVERA FAMILY BUDGET")
	assert.Contains(t, doc.Content, "$4,200")
	assert.Contains(t, doc.Content, "Groceries")
}

func TestGenerateBudgetRequiredFields(t *testing.T) {
	_, err := Generate(KindBudget, Fields{MonthlyIncome: "$1"})
	assert.ErrorContains(t, err, "family_name")

	_, err = Generate(KindBudget, Fields{FamilyName: "Rivera"})
	assert.ErrorContains(t, err, "monthly_income")
}

func TestGenerateChoreChartAgeBrackets(t *testing.T) {
	tests := []struct {
		age  int
		want string
	}{
		{2, "Put toys in the toy bin"},
		{3, "Put toys in the toy bin"},
		{4, "Feed a pet with help"},
		{5, "Feed a pet with help"},
		{6, "Clear own dishes after meals"},
		{8, "Clear own dishes after meals"},
		{9, "Take out the trash"},
		{12, "Take out the trash"},
		// Anything past the last bracket falls into it.
		{15, "Take out the trash"},
	}
	for _, tt := range tests {
		doc, err := Generate(KindChoreChart, Fields{ChildName: "Sam", ChildAge: tt.age})
		require.NoError(t, err)
		assert.Contains(t, doc.Content, tt.want, "age %d", tt.age)
	}
}

func TestGenerateChoreChartFilename(t *testing.T) {
	doc, err := Generate(KindChoreChart, Fields{ChildName: "Maya", ChildAge: 6})
	require.NoError(t, err)

	assert.Equal(t, "chore-chart-maya.txt", doc.Filename)
	assert.Contains(t, doc.Content, "MAYA'S CHORE CHART")
}

func TestGenerateChoreChartRequiredFields(t *testing.T) {
	_, err := Generate(KindChoreChart, Fields{ChildAge: 5})
	assert.ErrorContains(t, err, "child_name")

	_, err = Generate(KindChoreChart, Fields{ChildName: "Sam"})
	assert.ErrorContains(t, err, "child_age")
}

func TestGenerateJournal(t *testing.T) {
	doc, err := Generate(KindJournal, Fields{})
	require.NoError(t, err)

	assert.Equal(t, "gratitude-journal.txt", doc.Filename)
	assert.Contains(t, doc.Content, "GRATITUDE JOURNAL")

	withFamily, err := Generate(KindJournal, Fields{FamilyName: "Okafor"})
	require.NoError(t, err)
	assert.Contains(t, withFamily.Content, "Okafor")
}

func TestGenerateUnknownKind(t *testing.T) {
	_, err := Generate(Kind("meal-plan"), Fields{})
	assert.Error(t, err)
}
