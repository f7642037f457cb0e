package strategy

// StrategyType separates the two pluggable families kept by the registry
type StrategyType string

const (
	StrategyTypeCost       StrategyType = "cost"
	StrategyTypeAllocation StrategyType = "allocation"
)

func (t StrategyType) IsValid() bool {
	return t == StrategyTypeCost || t == StrategyTypeAllocation
}

// Strategy is the identity every unit cost calculator and allocation strategy exposes.
// Name is the registry key and must match the method value it implements.
type Strategy interface {
	Name() string
	Type() StrategyType
	Description() string
}

// BaseStrategy is embedded by concrete strategies to satisfy Strategy
type BaseStrategy struct {
	name        string
	kind        StrategyType
	description string
}

func NewBaseStrategy(name string, kind StrategyType, description string) BaseStrategy {
	return BaseStrategy{name: name, kind: kind, description: description}
}

func (s BaseStrategy) Name() string { return s.name }

func (s BaseStrategy) Type() StrategyType { return s.kind }

func (s BaseStrategy) Description() string { return s.description }
