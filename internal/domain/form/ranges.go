package form

import "strconv"

// RangeBinding pairs a range input with the element that mirrors its value.
type RangeBinding struct {
	InputID   string
	DisplayID string
	Name      string
	Label     string
	Min       int
	Max       int
	Step      int
	Value     string
}

// Display returns the text the display element shows: the input's current
// value, verbatim.
func (b RangeBinding) Display() string {
	return b.Value
}

// Bind returns a copy of b whose value follows the submitted input. An empty
// submission keeps the current value.
func (b RangeBinding) Bind(value string) RangeBinding {
	if value != "" {
		b.Value = value
	}
	return b
}

// DefaultBindings are the two range controls of the prediction form. Bounds
// follow the backend's accepted ranges.
func DefaultBindings() []RangeBinding {
	return []RangeBinding{
		{
			InputID: "income", DisplayID: "incomeValue", Name: FieldIncome,
			Label: "Annual Income ($k)", Min: 0, Max: 200, Step: 1, Value: strconv.Itoa(70),
		},
		{
			InputID: "spending", DisplayID: "spendingValue", Name: FieldSpending,
			Label: "Spending Score (1-100)", Min: 1, Max: 100, Step: 1, Value: strconv.Itoa(50),
		},
	}
}

// BindAll applies submitted values to bindings by field name.
func BindAll(bindings []RangeBinding, in Input) []RangeBinding {
	out := make([]RangeBinding, len(bindings))
	for i, b := range bindings {
		switch b.Name {
		case FieldIncome:
			out[i] = b.Bind(in.Income)
		case FieldSpending:
			out[i] = b.Bind(in.Spending)
		default:
			out[i] = b
		}
	}
	return out
}
