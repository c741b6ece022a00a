package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sparxfest/internal/model"
)

func sampleRegs() []model.Registration {
	return []model.Registration{
		{
			FullName:      "Jane Doe",
			Email:         "jane@college.edu",
			College:       "SparxTech Institute",
			Events:        []string{"Code Trace", "Scribble"},
			TotalFee:      100,
			PaymentMethod: "upi",
			Timestamp:     "2026-02-10T10:00:00Z",
		},
		{
			FullName:      "Arjun Mehta",
			Email:         "arjun@example.com",
			College:       "City Engineering College",
			Events:        []string{"Treasure Hunt"},
			TotalFee:      50,
			PaymentMethod: "cash",
			Timestamp:     "2026-02-11T09:00:00Z",
		},
		{
			FullName:      "Priya Sharma",
			Email:         "priya@college.edu",
			College:       "SparxTech Institute",
			Events:        []string{"Code Trace"},
			TotalFee:      50,
			PaymentMethod: "cash",
			Timestamp:     "2026-02-09T15:30:00Z",
		},
	}
}

func TestSortNewestFirstMissingLast(t *testing.T) {
	regs := []model.Registration{
		{FullName: "T3", Timestamp: "2026-02-09T10:00:00Z"},
		{FullName: "T1", Timestamp: "2026-02-11T10:00:00Z"},
		{FullName: "missing"},
		{FullName: "T2", Timestamp: "2026-02-10T10:00:00Z"},
	}

	sorted := Sort(regs)

	var names []string
	for _, r := range sorted {
		names = append(names, r.FullName)
	}
	assert.Equal(t, []string{"T1", "T2", "T3", "missing"}, names)

	// Input order untouched.
	assert.Equal(t, "T3", regs[0].FullName)
}

func TestSortStableOnTies(t *testing.T) {
	regs := []model.Registration{
		{FullName: "first", Timestamp: "2026-02-10T10:00:00Z"},
		{FullName: "second", Timestamp: "2026-02-10T10:00:00Z"},
		{FullName: "gap one"},
		{FullName: "gap two"},
	}

	sorted := Sort(regs)
	assert.Equal(t, "first", sorted[0].FullName)
	assert.Equal(t, "second", sorted[1].FullName)
	assert.Equal(t, "gap one", sorted[2].FullName)
	assert.Equal(t, "gap two", sorted[3].FullName)
}

func TestApplySearchIsCaseInsensitiveSubstring(t *testing.T) {
	regs := sampleRegs()

	out := Apply(regs, Filters{Search: "sparxtech"})
	assert.Len(t, out, 2)

	out = Apply(regs, Filters{Search: "ARJUN"})
	assert.Len(t, out, 1)
	assert.Equal(t, "Arjun Mehta", out[0].FullName)

	out = Apply(regs, Filters{Search: "@college.edu"})
	assert.Len(t, out, 2)

	out = Apply(regs, Filters{Search: "nobody"})
	assert.Empty(t, out)
}

func TestApplyEventMembership(t *testing.T) {
	regs := sampleRegs()

	out := Apply(regs, Filters{Event: "Code Trace"})
	assert.Len(t, out, 2)

	out = Apply(regs, Filters{Event: "Treasure Hunt"})
	assert.Len(t, out, 1)

	out = Apply(regs, Filters{Event: FilterAll})
	assert.Len(t, out, 3)
}

func TestApplyPaymentMethod(t *testing.T) {
	regs := sampleRegs()

	out := Apply(regs, Filters{Payment: "cash"})
	assert.Len(t, out, 2)

	out = Apply(regs, Filters{Payment: "UPI"})
	assert.Len(t, out, 1, "payment match ignores case")
}

func TestApplyFiltersCompose(t *testing.T) {
	regs := sampleRegs()

	out := Apply(regs, Filters{Search: "sparxtech", Event: "Code Trace", Payment: "cash"})
	assert.Len(t, out, 1)
	assert.Equal(t, "Priya Sharma", out[0].FullName)
}

func TestApplyIsIdempotentAndOrderPreserving(t *testing.T) {
	regs := Sort(sampleRegs())
	f := Filters{Event: "Code Trace"}

	once := Apply(regs, f)
	twice := Apply(once, f)
	assert.Equal(t, once, twice)

	// Order of survivors matches the input order.
	assert.Equal(t, "Jane Doe", once[0].FullName)
	assert.Equal(t, "Priya Sharma", once[1].FullName)
}

func TestEmptyFiltersReturnEverything(t *testing.T) {
	regs := sampleRegs()
	assert.Len(t, Apply(regs, Filters{}), len(regs))
}

func TestEventOptionsDistinctSorted(t *testing.T) {
	opts := EventOptions(sampleRegs())
	assert.Equal(t, []string{"Code Trace", "Scribble", "Treasure Hunt"}, opts)

	assert.Empty(t, EventOptions(nil))
}

func TestSummarize(t *testing.T) {
	totals := Summarize(sampleRegs())
	assert.Equal(t, 200, totals.All)
	assert.Equal(t, 100, totals.Cash)
	assert.Equal(t, 100, totals.UPI)

	filtered := Apply(sampleRegs(), Filters{Payment: "cash"})
	totals = Summarize(filtered)
	assert.Equal(t, 100, totals.All)
	assert.Equal(t, 100, totals.Cash)
	assert.Equal(t, 0, totals.UPI)
}
