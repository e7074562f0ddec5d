package costing

// Engine agrupa los componentes del motor ya cableados entre sí.
type Engine struct {
	Ledger       *Ledger
	Resolver     *Resolver
	AverageCosts *AverageCostLedger
	Bom          *BomSimulator
	Routing      *RoutingCalculator
	Orchestrator *Orchestrator
	Formulas     *FormulaRegistry
}

// NewEngine cablea los componentes por constructor; no hay resolución de servicios en tiempo de ejecución.
func NewEngine(formulas *FormulaRegistry, s Settings) *Engine {
	ledger := NewLedger(s)
	resolver := NewResolver(s)
	routing := NewRoutingCalculator(formulas, s)
	return &Engine{
		Ledger:       ledger,
		Resolver:     resolver,
		AverageCosts: NewAverageCostLedger(ledger, s),
		Bom:          NewBomSimulator(resolver, s),
		Routing:      routing,
		Orchestrator: NewOrchestrator(resolver, routing, ledger, formulas, s),
		Formulas:     formulas,
	}
}
