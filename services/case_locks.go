package services

import "sync"

// caseLocks holds one mutex per case ID. Close, rename, extra-data writes
// and document uploads on the same case must not interleave; operations on
// different cases run in parallel.
var caseLocks sync.Map

// lockCase acquires the per-case mutex and returns the unlock function
func lockCase(caseID string) func() {
	v, _ := caseLocks.LoadOrStore(caseID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
