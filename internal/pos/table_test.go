package pos

import "testing"

func TestCheckOccupiable(t *testing.T) {
	if verr := CheckOccupiable(TableAvailable); verr != nil {
		t.Fatalf("available table must be occupiable, got %v", verr)
	}
	for _, status := range []TableStatus{TableOccupied, TableReserved} {
		verr := CheckOccupiable(status)
		if verr == nil {
			t.Fatalf("%s table must not be occupiable", status)
		}
		if verr.Code != ErrTableOccupied {
			t.Fatalf("expected %s, got %s", ErrTableOccupied, verr.Code)
		}
	}
}

func TestPlanClear(t *testing.T) {
	plan := PlanClear(true)
	if !plan.Cleared || !plan.CompleteOrder || !plan.FreeTable {
		t.Fatalf("clearing a linked table must complete the order and free the table, got %+v", plan)
	}

	// After the first clear nulls the link, a second clear finds no order
	// and must mutate nothing.
	second := PlanClear(false)
	if second.Cleared || second.CompleteOrder || second.FreeTable {
		t.Fatalf("clearing an unlinked table must be a no-op, got %+v", second)
	}
}

func TestPaidOrderKeepsTableOccupied(t *testing.T) {
	// Recording payment passes its checks without producing any table write;
	// the occupancy gate still reports the table taken afterwards.
	if verr := CheckRecordPayment(OrderStatusOpen, PaymentCash, f64(25), 23); verr != nil {
		t.Fatalf("unexpected payment rejection: %v", verr)
	}
	if verr := CheckOccupiable(TableOccupied); verr == nil {
		t.Fatal("paid table must still be occupied until cleared")
	}
}
