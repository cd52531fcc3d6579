package pos

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
	TableReserved  TableStatus = "RESERVED"
)

// CheckOccupiable gates claiming a table for a dine-in order. Payment never
// frees a table, so a paid order's table still reports occupied here.
func CheckOccupiable(status TableStatus) *Error {
	if status != TableAvailable {
		return ConflictError(ErrTableOccupied, "Table is not available")
	}
	return nil
}

// ClearPlan lists the writes a clear request performs. Clearing touches the
// order status and the table occupancy fields only, never payment fields.
type ClearPlan struct {
	Cleared       bool
	CompleteOrder bool
	FreeTable     bool
}

// PlanClear maps the table's order link onto the clear transaction. A table
// without a link is a no-op, which is what makes a second clear of the same
// table return cleared=false instead of an error.
func PlanClear(hasCurrentOrder bool) ClearPlan {
	if !hasCurrentOrder {
		return ClearPlan{}
	}
	return ClearPlan{Cleared: true, CompleteOrder: true, FreeTable: true}
}
