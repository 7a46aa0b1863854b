package core

// ComputeStats counts each observed status value across records.
// Callers pass the full unfiltered dataset.
func ComputeStats(records []Registration) Stats {
	st := Stats{
		Total:            len(records),
		DemoStatus:       make(map[string]int),
		EnrollmentStatus: make(map[string]int),
		PaymentStatus:    make(map[string]int),
	}
	for _, r := range records {
		st.DemoStatus[string(r.DemoStatus)]++
		st.EnrollmentStatus[string(r.EnrollmentStatus)]++
		st.PaymentStatus[string(r.PaymentStatus)]++
	}
	return st
}
