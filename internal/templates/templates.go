// Package templates generates downloadable plain-text documents from small
// structured field records. Generation is pure; handing the result to the
// browser as a download is the client's job.
package templates

import (
	"fmt"
	"strings"
)

// Kind selects which document to generate.
type Kind string

const (
	// KindBudget is a simple family budget worksheet.
	KindBudget Kind = "budget"
	// KindChoreChart is an age-appropriate chore chart for one child.
	KindChoreChart Kind = "chore-chart"
	// KindJournal is a guided gratitude journal page.
	KindJournal Kind = "journal"
)

// Fields is the structured input record. Which fields are required depends on
// the kind; presence is the only validation performed.
type Fields struct {
	FamilyName    string `json:"family_name"`
	MonthlyIncome string `json:"monthly_income"`
	ChildName     string `json:"child_name"`
	ChildAge      int    `json:"child_age"`
}

// Document is a generated plain-text file with a suggested filename.
type Document struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Generate produces the document for a kind, or an error naming the first
// missing required field.
func Generate(kind Kind, f Fields) (*Document, error) {
	switch kind {
	case KindBudget:
		return generateBudget(f)
	case KindChoreChart:
		return generateChoreChart(f)
	case KindJournal:
		return generateJournal(f)
	default:
		return nil, fmt.Errorf("unknown template kind %q", kind)
	}
}

func generateBudget(f Fields) (*Document, error) {
	if f.FamilyName == "" {
		return nil, fmt.Errorf("family_name is required")
	}
	if f.MonthlyIncome == "" {
		return nil, fmt.Errorf("monthly_income is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s FAMILY BUDGET\n", strings.ToUpper(f.FamilyName))
	b.WriteString("==============================\n\n")
	fmt.Fprintf(&b, "Monthly income: %s\n\n", f.MonthlyIncome)
	b.WriteString("FIXED COSTS\n")
	for _, line := range []string{"Rent / mortgage", "Utilities", "Insurance", "Childcare", "Transport"} {
		fmt.Fprintf(&b, "  %-20s ________\n", line)
	}
	b.WriteString("\nFLEXIBLE COSTS\n")
	for _, line := range []string{"Groceries", "Kids' activities", "Household", "Fun money (yes, you too)"} {
		fmt.Fprintf(&b, "  %-24s ________\n", line)
	}
	b.WriteString("\nSAVINGS GOAL\n")
	b.WriteString("  Even a small amount counts: ________\n\n")
	b.WriteString("Reminder: a budget is a plan, not a report card.\n")

	return &Document{Filename: "family-budget.txt", Content: b.String()}, nil
}

// ageBracketChores returns chores for the child-age brackets: 3 and under,
// 4-5, 6-8, and 9-12 with the last bracket as catch-all.
func ageBracketChores(age int) []string {
	switch {
	case age <= 3:
		return []string{
			"Put toys in the toy bin",
			"Put dirty clothes in the hamper",
			"Help wipe up small spills",
		}
	case age <= 5:
		return []string{
			"Make the bed (imperfectly is fine)",
			"Feed a pet with help",
			"Set out napkins for dinner",
			"Put away shoes",
		}
	case age <= 8:
		return []string{
			"Make the bed",
			"Clear own dishes after meals",
			"Sort laundry into lights and darks",
			"Water plants",
			"Pack the school bag",
		}
	default:
		return []string{
			"Take out the trash",
			"Load and unload the dishwasher",
			"Fold and put away own laundry",
			"Help prep one meal a week",
			"Vacuum a room",
		}
	}
}

func generateChoreChart(f Fields) (*Document, error) {
	if f.ChildName == "" {
		return nil, fmt.Errorf("child_name is required")
	}
	if f.ChildAge <= 0 {
		return nil, fmt.Errorf("child_age is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s'S CHORE CHART (age %d)\n", strings.ToUpper(f.ChildName), f.ChildAge)
	b.WriteString("==============================\n\n")
	b.WriteString("        Mon Tue Wed Thu Fri Sat Sun\n")
	for _, chore := range ageBracketChores(f.ChildAge) {
		fmt.Fprintf(&b, "%-28s [ ] [ ] [ ] [ ] [ ] [ ] [ ]\n", chore)
	}
	b.WriteString("\nDone is better than perfect. Praise effort, not results.\n")

	filename := fmt.Sprintf("chore-chart-%s.txt", strings.ToLower(f.ChildName))
	return &Document{Filename: filename, Content: b.String()}, nil
}

func generateJournal(f Fields) (*Document, error) {
	var b strings.Builder
	b.WriteString("GRATITUDE JOURNAL\n")
	if f.FamilyName != "" {
		fmt.Fprintf(&b, "for the %s family\n", f.FamilyName)
	}
	b.WriteString("==============================\n\n")
	prompts := []string{
		"One small moment today that made me smile:",
		"Something I handled better than I give myself credit for:",
		"One thing my child did that I want to remember:",
		"Something I can let go of tonight:",
		"Tomorrow, one kind thing I will do for myself:",
	}
	for _, p := range prompts {
		b.WriteString(p + "\n\n  ________________________________________\n\n")
	}
	b.WriteString("You are doing better than you think.\n")

	return &Document{Filename: "gratitude-journal.txt", Content: b.String()}, nil
}
