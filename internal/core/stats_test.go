package core

import "testing"

func TestComputeStats(t *testing.T) {
	var records []Registration
	for i := 0; i < 3; i++ {
		r := rec("a", "A", "a", "1", 0)
		r.DemoStatus = DemoAttended
		records = append(records, r)
	}
	for i := 0; i < 2; i++ {
		r := rec("n", "N", "n", "2", 0)
		r.DemoStatus = DemoNotAttended
		r.PaymentStatus = PaymentRegistration
		records = append(records, r)
	}

	st := ComputeStats(records)

	if st.Total != 5 {
		t.Errorf("Total = %d, want 5", st.Total)
	}
	if st.DemoStatus["Attended"] != 3 || st.DemoStatus["Not Attended"] != 2 {
		t.Errorf("DemoStatus = %v", st.DemoStatus)
	}
	if _, ok := st.DemoStatus["Registered"]; ok {
		t.Error("unobserved value Registered should be absent")
	}
	if st.EnrollmentStatus["Not Enrolled"] != 5 {
		t.Errorf("EnrollmentStatus = %v", st.EnrollmentStatus)
	}
	if st.PaymentStatus["Not Paid"] != 3 || st.PaymentStatus["Registration Paid"] != 2 {
		t.Errorf("PaymentStatus = %v", st.PaymentStatus)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	st := ComputeStats(nil)
	if st.Total != 0 || len(st.DemoStatus) != 0 || len(st.EnrollmentStatus) != 0 || len(st.PaymentStatus) != 0 {
		t.Errorf("ComputeStats(nil) = %+v, want zero counts", st)
	}
	if st.DemoStatus == nil {
		t.Error("maps should be non-nil so they encode as {}")
	}
}
