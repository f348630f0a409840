package format

import "fmt"

// Percentage renders a fractional rate as a percentage with two decimals (0.15 -> "15.00%").
func Percentage(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

var frequencyLabels = map[int]string{
	1:  "Yearly",
	2:  "Half-Yearly",
	3:  "Quarterly (4 months)",
	4:  "Quarterly",
	6:  "Bi-Monthly",
	12: "Monthly",
}

// FrequencyLabel names a payment frequency given in periods per year.
func FrequencyLabel(frequencyPerYear int) string {
	if label, ok := frequencyLabels[frequencyPerYear]; ok {
		return label
	}
	return fmt.Sprintf("%d times/year", frequencyPerYear)
}
