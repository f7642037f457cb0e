package strategy

import "fmt"

// CostMethod represents the inventory costing method
type CostMethod string

const (
	CostMethodFIFO            CostMethod = "fifo"
	CostMethodLIFO            CostMethod = "lifo"
	CostMethodWeightedAverage CostMethod = "weighted_average"
	CostMethodStandard        CostMethod = "standard"
)

// String returns the string representation of the cost method
func (m CostMethod) String() string {
	return string(m)
}

// IsValid returns true if the cost method is one of the built-in methods
func (m CostMethod) IsValid() bool {
	switch m {
	case CostMethodFIFO, CostMethodLIFO, CostMethodWeightedAverage, CostMethodStandard:
		return true
	default:
		return false
	}
}

// UsesLots reports whether the method prices stock by walking stock lots
func (m CostMethod) UsesLots() bool {
	return m == CostMethodFIFO || m == CostMethodLIFO || m == CostMethodWeightedAverage
}

// Description returns a human-readable description of the method
func (m CostMethod) Description() string {
	switch m {
	case CostMethodFIFO:
		return "First-In-First-Out: oldest lots are consumed first"
	case CostMethodLIFO:
		return "Last-In-First-Out: newest lots are consumed first"
	case CostMethodWeightedAverage:
		return "Weighted average of remaining lot costs"
	case CostMethodStandard:
		return "Pre-configured standard unit cost"
	default:
		return "Unknown cost method"
	}
}

// AllCostMethods returns the built-in cost methods
func AllCostMethods() []CostMethod {
	return []CostMethod{
		CostMethodFIFO,
		CostMethodLIFO,
		CostMethodWeightedAverage,
		CostMethodStandard,
	}
}

// ParseCostMethod converts a string to a built-in CostMethod
func ParseCostMethod(s string) (CostMethod, error) {
	m := CostMethod(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown cost method %q", s)
	}
	return m, nil
}
