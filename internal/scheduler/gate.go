package scheduler

// AdmissionGate is the single execution slot in front of the compute process.
// TryAdmit never blocks; a caller that is granted the slot owns it until Release.
type AdmissionGate struct {
	slot chan struct{}
}

// NewAdmissionGate creates an open gate
func NewAdmissionGate() *AdmissionGate {
	return &AdmissionGate{slot: make(chan struct{}, 1)}
}

// TryAdmit takes the slot if it is free and reports whether it did
func (g *AdmissionGate) TryAdmit() bool {
	select {
	case g.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees the slot. Releasing a free slot is a programming error.
func (g *AdmissionGate) Release() {
	select {
	case <-g.slot:
	default:
		panic("scheduler: release of unheld admission slot")
	}
}

// Busy reports whether a job currently holds the slot
func (g *AdmissionGate) Busy() bool {
	return len(g.slot) == 1
}
