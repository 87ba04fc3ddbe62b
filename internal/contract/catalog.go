package contract

// catalog.go declares the built-in module catalogue. These are plain data:
// one Contract per projection a built-in module exposes, and one
// ConsumerDeclaration per contract the dashboard module can render.

// Built-in module ids.
const (
	ModuleTodo      = "todo-module"
	ModuleNotes     = "notes-module"
	ModuleTimer     = "timer-module"
	ModuleTable     = "table-module"
	ModuleDashboard = "dashboard-module"
)

// Built-in contract ids.
const (
	ContractTodo  = "boardkit.todo.v1"
	ContractNotes = "boardkit.notes.v1"
	ContractTimer = "boardkit.timer.v1"
	ContractTable = "boardkit.table.v1"
)

// builtinContracts lists the projections shipped with the host.
var builtinContracts = []Contract{
	{
		ID:          ContractTodo,
		Name:        "Todo List",
		Description: "Items of a todo widget with completion state.",
		Version:     "1.0.0",
		ProviderID:  ModuleTodo,
	},
	{
		ID:          ContractNotes,
		Name:        "Notes",
		Description: "Plain-text body of a notes widget.",
		Version:     "1.0.0",
		ProviderID:  ModuleNotes,
	},
	{
		ID:          ContractTimer,
		Name:        "Timer",
		Description: "Remaining duration and run state of a timer widget.",
		Version:     "1.0.0",
		ProviderID:  ModuleTimer,
	},
	{
		ID:          ContractTable,
		Name:        "Table",
		Description: "Rows and column headers of a table widget.",
		Version:     "1.0.0",
		ProviderID:  ModuleTable,
	},
}

// builtinConsumers lists the dashboard module's declarations. The dashboard
// aggregates any number of providers per contract, so every declaration is
// multi-select with its own state key.
var builtinConsumers = []ConsumerDeclaration{
	{ModuleID: ModuleDashboard, ContractID: ContractTodo, MultiSelect: true, StateKey: "todoSources", SourceLabel: "Todo lists"},
	{ModuleID: ModuleDashboard, ContractID: ContractNotes, MultiSelect: true, StateKey: "noteSources", SourceLabel: "Notes"},
	{ModuleID: ModuleDashboard, ContractID: ContractTimer, MultiSelect: true, StateKey: "timerSources", SourceLabel: "Timers"},
	{ModuleID: ModuleDashboard, ContractID: ContractTable, MultiSelect: false, StateKey: "tableSource", SourceLabel: "Source table"},
}

// RegisterBuiltins populates the registries with the built-in catalogue.
func RegisterBuiltins(contracts *Registry, consumers *ConsumerRegistry) error {
	for _, c := range builtinContracts {
		if err := contracts.Register(c); err != nil {
			return err
		}
	}
	for _, d := range builtinConsumers {
		if err := consumers.Register(d); err != nil {
			return err
		}
	}
	return nil
}
