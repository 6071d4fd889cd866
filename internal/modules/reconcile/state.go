package reconcile

import (
	"time"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/duedate"
)

// Settle refreshes the derived state of next after a reconcile from prev.
// An operator override is left alone; otherwise the state is derived when it
// is missing, when the due date moved, or when the override was just lifted.
func Settle(prev, next inspection.Record, now time.Time) inspection.Record {
	if next.EtatOverride {
		return next
	}
	if next.Etat == "" ||
		next.DateProchaineInspection != prev.DateProchaineInspection ||
		prev.EtatOverride {
		next.Etat = duedate.Derive(next.DateProchaineInspection, now)
	}
	return next
}

// Apply is Reconcile followed by Settle.
func Apply(cur inspection.Record, p Patch, src Source, now time.Time) inspection.Record {
	return Settle(cur, Reconcile(cur, p, src), now)
}
