package stats

import "testing"

func TestReservoirSamplerOrdersPercentiles(t *testing.T) {
	rs := NewReservoirSampler(10)
	for i := int64(1); i <= 20; i++ {
		rs.Add(i * 10)
	}

	if rs.Count() != 20 {
		t.Fatalf("expected count 20, got %d", rs.Count())
	}

	p50, p95, p99 := rs.GetPercentiles()
	if p50 == 0 || p95 == 0 || p99 == 0 {
		t.Fatal("percentiles should not be zero once values have been added")
	}
	if p50 > p95 || p95 > p99 {
		t.Fatalf("invalid percentile ordering: p50=%d p95=%d p99=%d", p50, p95, p99)
	}
}

func TestReservoirSamplerEmptyIsZero(t *testing.T) {
	rs := NewReservoirSampler(10)
	p50, p95, p99 := rs.GetPercentiles()
	if p50 != 0 || p95 != 0 || p99 != 0 {
		t.Fatal("an empty sampler should report zero percentiles")
	}
}

func TestReservoirSamplerSingleValue(t *testing.T) {
	rs := NewReservoirSampler(10)
	rs.Add(100)

	p50, p95, p99 := rs.GetPercentiles()
	if p50 != 100 || p95 != 100 || p99 != 100 {
		t.Fatal("a single value should be every percentile")
	}
}

func TestReservoirSamplerReset(t *testing.T) {
	rs := NewReservoirSampler(10)
	for i := 0; i < 100; i++ {
		rs.Add(int64(i))
	}
	rs.Reset()

	if rs.Count() != 0 {
		t.Fatal("count should be 0 after reset")
	}
	p50, p95, p99 := rs.GetPercentiles()
	if p50 != 0 || p95 != 0 || p99 != 0 {
		t.Fatal("percentiles should be 0 after reset")
	}
}

func TestReservoirSamplerCapsMemoryAtMaxSize(t *testing.T) {
	rs := NewReservoirSampler(5)
	for i := int64(0); i < 1000; i++ {
		rs.Add(i)
	}
	if len(rs.sample) != 5 {
		t.Fatalf("expected reservoir capped at 5 entries, got %d", len(rs.sample))
	}
	if rs.Count() != 1000 {
		t.Fatalf("expected Count to track every Add regardless of reservoir size, got %d", rs.Count())
	}
}
