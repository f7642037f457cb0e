package strategy

import "fmt"

// AllocationMethod represents how a lump-sum cost is divided across targets
type AllocationMethod string

const (
	AllocationMethodRatio    AllocationMethod = "ratio"
	AllocationMethodQuantity AllocationMethod = "quantity"
	AllocationMethodValue    AllocationMethod = "value"
	AllocationMethodActivity AllocationMethod = "activity"
)

// Target field names understood by the built-in allocation methods
const (
	TargetFieldSKU           = "sku_id"
	TargetFieldRatio         = "ratio"
	TargetFieldQuantity      = "quantity"
	TargetFieldValue         = "value"
	TargetFieldActivityUnits = "activity_units"
)

// String returns the string representation of the allocation method
func (m AllocationMethod) String() string {
	return string(m)
}

// IsValid returns true if the method is one of the built-in methods
func (m AllocationMethod) IsValid() bool {
	switch m {
	case AllocationMethodRatio, AllocationMethodQuantity, AllocationMethodValue, AllocationMethodActivity:
		return true
	default:
		return false
	}
}

// WeightField returns the target field carrying the method's weight.
// Returns "" for methods that are not built in.
func (m AllocationMethod) WeightField() string {
	switch m {
	case AllocationMethodRatio:
		return TargetFieldRatio
	case AllocationMethodQuantity:
		return TargetFieldQuantity
	case AllocationMethodValue:
		return TargetFieldValue
	case AllocationMethodActivity:
		return TargetFieldActivityUnits
	default:
		return ""
	}
}

// SchemaFields returns the target fields a built-in method requires
func (m AllocationMethod) SchemaFields() []string {
	field := m.WeightField()
	if field == "" {
		return nil
	}
	return []string{TargetFieldSKU, field}
}

// AllAllocationMethods returns the built-in allocation methods
func AllAllocationMethods() []AllocationMethod {
	return []AllocationMethod{
		AllocationMethodRatio,
		AllocationMethodQuantity,
		AllocationMethodValue,
		AllocationMethodActivity,
	}
}

// ParseAllocationMethod converts a string to an AllocationMethod.
// Unknown names are accepted here; whether a strategy exists for them is a
// registry concern.
func ParseAllocationMethod(s string) (AllocationMethod, error) {
	if s == "" {
		return "", fmt.Errorf("allocation method is required")
	}
	return AllocationMethod(s), nil
}
