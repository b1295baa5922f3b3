package model

import (
	"testing"
	"time"
)

func result(mirror string, available bool, rt float64) *ProbeResult {
	return &ProbeResult{Mirror: mirror, Available: available, ResponseTime: rt}
}

func TestSortResults(t *testing.T) {
	results := []*ProbeResult{
		result("slow-ok", true, 300),
		result("dead", false, 50),
		result("fast-ok", true, 20),
		result("mid-ok", true, 100),
	}

	SortResults(results)

	wantOrder := []string{"fast-ok", "mid-ok", "slow-ok", "dead"}
	for i, want := range wantOrder {
		if results[i].Mirror != want {
			t.Fatalf("results[%d]=%q, want %q", i, results[i].Mirror, want)
		}
	}
}

func TestNewBatch_Counts(t *testing.T) {
	batch := NewBatch([]*ProbeResult{
		result("a", true, 10),
		result("b", false, 0),
		result("c", true, 5),
	}, Now())

	if batch.Total != 3 {
		t.Fatalf("total=%d, want 3", batch.Total)
	}
	if batch.Available != 2 {
		t.Fatalf("available=%d, want 2", batch.Available)
	}
	if batch.Unavailable != 1 {
		t.Fatalf("unavailable=%d, want 1", batch.Unavailable)
	}
	// 构建时已排序
	if batch.Results[0].Mirror != "c" {
		t.Fatalf("results[0]=%q, want c", batch.Results[0].Mirror)
	}
}

func TestNewBatch_Empty(t *testing.T) {
	batch := NewBatch(nil, Now())
	if batch.Total != 0 || batch.Available != 0 || batch.Unavailable != 0 {
		t.Fatalf("empty batch counts = %d/%d/%d, want 0/0/0", batch.Total, batch.Available, batch.Unavailable)
	}
}

func TestJSONTime_MarshalFormat(t *testing.T) {
	jt := JSONTime{Time: time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)}
	data, err := jt.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"2025-03-14 15:09:26"` {
		t.Fatalf("marshaled=%s, want \"2025-03-14 15:09:26\"", data)
	}
}

func TestJSONTime_ZeroIsNull(t *testing.T) {
	var jt JSONTime
	data, err := jt.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("marshaled=%s, want null", data)
	}
}

func TestJSONTime_RoundTrip(t *testing.T) {
	orig := Now()
	data, err := orig.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var parsed JSONTime
	if err := parsed.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !parsed.Equal(orig.Time) {
		t.Fatalf("round-trip mismatch: %v != %v", parsed.Time, orig.Time)
	}
}
