package adapter

import "time"

// Metrics records operational counters for the processor and the group coordinator.
type Metrics interface {
	// ObserveRun records one processor pass over definitions.
	ObserveRun(duration time.Duration, definitions int)

	// AddGenerated counts materialised transactions.
	AddGenerated(n int)

	// IncDefinitionFailure counts a failed definition by error kind.
	IncDefinitionFailure(kind string)

	// IncGroupMutation counts an installment group mutation by operation and scope.
	IncGroupMutation(operation, scope string)
}
