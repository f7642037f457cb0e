package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
)

// ErrRegistrySealed is returned when the registry is modified after Seal
var ErrRegistrySealed = shared.NewDomainError("REGISTRY_SEALED", "Strategy registry is sealed")

// StrategyRegistry manages cost calculators and allocation strategies.
//
// Registration belongs to the configuration phase. Once Seal is called the
// registry is read-only and every mutation fails with ErrRegistrySealed.
// Lookups are safe for concurrent use in both phases.
type StrategyRegistry struct {
	mu                   sync.RWMutex
	costCalculators      []costing.UnitCostCalculator
	allocationStrategies map[strategy.AllocationMethod]costing.AllocationStrategy
	sealed               bool
}

// NewStrategyRegistry creates a new strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		costCalculators:      make([]costing.UnitCostCalculator, 0),
		allocationStrategies: make(map[strategy.AllocationMethod]costing.AllocationStrategy),
	}
}

// Seal ends the configuration phase
func (r *StrategyRegistry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// IsSealed returns true once Seal has been called
func (r *StrategyRegistry) IsSealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// RegisterCostCalculator appends a cost calculator. Calculators are
// consulted in registration order.
func (r *StrategyRegistry) RegisterCostCalculator(c costing.UnitCostCalculator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register cost calculator '%s'", ErrRegistrySealed, c.Name())
	}
	for _, existing := range r.costCalculators {
		if existing.Name() == c.Name() {
			return fmt.Errorf("%w: cost calculator '%s' already registered", shared.ErrAlreadyExists, c.Name())
		}
	}
	r.costCalculators = append(r.costCalculators, c)
	return nil
}

// UnregisterCostCalculator removes a cost calculator by name
func (r *StrategyRegistry) UnregisterCostCalculator(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot unregister cost calculator '%s'", ErrRegistrySealed, name)
	}
	for i, existing := range r.costCalculators {
		if existing.Name() == name {
			r.costCalculators = append(r.costCalculators[:i], r.costCalculators[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: cost calculator '%s' not found", shared.ErrNotFound, name)
}

// GetCostCalculator returns the first calculator that supports the method
func (r *StrategyRegistry) GetCostCalculator(method strategy.CostMethod) (costing.UnitCostCalculator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.costCalculators {
		if c.Supports(method) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: no calculator for cost method '%s'", shared.ErrUnsupportedStrategy, method)
}

// ListCostCalculators returns the registered calculators in registration order
func (r *StrategyRegistry) ListCostCalculators() []costing.UnitCostCalculator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]costing.UnitCostCalculator, len(r.costCalculators))
	copy(out, r.costCalculators)
	return out
}

// ListCostMethods returns the methods of the registered calculators in registration order
func (r *StrategyRegistry) ListCostMethods() []strategy.CostMethod {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make([]strategy.CostMethod, 0, len(r.costCalculators))
	for _, c := range r.costCalculators {
		methods = append(methods, c.SupportedMethod())
	}
	return methods
}

// RegisterAllocationStrategy registers an allocation strategy under its method
func (r *StrategyRegistry) RegisterAllocationStrategy(s costing.AllocationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register allocation strategy '%s'", ErrRegistrySealed, s.Name())
	}
	method := s.Method()
	if _, exists := r.allocationStrategies[method]; exists {
		return fmt.Errorf("%w: allocation strategy '%s' already registered", shared.ErrAlreadyExists, method)
	}
	r.allocationStrategies[method] = s
	return nil
}

// OverrideAllocationStrategy registers a strategy, replacing any strategy
// already registered for the same method
func (r *StrategyRegistry) OverrideAllocationStrategy(s costing.AllocationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot override allocation strategy '%s'", ErrRegistrySealed, s.Name())
	}
	r.allocationStrategies[s.Method()] = s
	return nil
}

// UnregisterAllocationStrategy removes the strategy for a method
func (r *StrategyRegistry) UnregisterAllocationStrategy(method strategy.AllocationMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot unregister allocation strategy '%s'", ErrRegistrySealed, method)
	}
	if _, exists := r.allocationStrategies[method]; !exists {
		return fmt.Errorf("%w: allocation strategy '%s' not found", shared.ErrNotFound, method)
	}
	delete(r.allocationStrategies, method)
	return nil
}

// GetAllocationStrategy returns the strategy for a method
func (r *StrategyRegistry) GetAllocationStrategy(method strategy.AllocationMethod) (costing.AllocationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.allocationStrategies[method]
	if !exists {
		return nil, fmt.Errorf("%w: '%s'", shared.ErrUnsupportedAllocationMethod, method)
	}
	return s, nil
}

// ListAllocationStrategies returns all allocation strategies sorted by method
func (r *StrategyRegistry) ListAllocationStrategies() []costing.AllocationStrategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]costing.AllocationStrategy, 0, len(r.allocationStrategies))
	for _, s := range r.allocationStrategies {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Method() < out[j].Method()
	})
	return out
}

// ListAllocationMethods returns the registered allocation methods, sorted
func (r *StrategyRegistry) ListAllocationMethods() []strategy.AllocationMethod {
	strategies := r.ListAllocationStrategies()
	methods := make([]strategy.AllocationMethod, len(strategies))
	for i, s := range strategies {
		methods[i] = s.Method()
	}
	return methods
}

// IsRegistered returns true if a strategy with the given name is registered for the type
func (r *StrategyRegistry) IsRegistered(strategyType strategy.StrategyType, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch strategyType {
	case strategy.StrategyTypeCost:
		for _, c := range r.costCalculators {
			if c.Name() == name {
				return true
			}
		}
		return false
	case strategy.StrategyTypeAllocation:
		for _, s := range r.allocationStrategies {
			if s.Name() == name {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Stats returns registration counts for each strategy type
func (r *StrategyRegistry) Stats() map[strategy.StrategyType]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[strategy.StrategyType]int{
		strategy.StrategyTypeCost:       len(r.costCalculators),
		strategy.StrategyTypeAllocation: len(r.allocationStrategies),
	}
}
