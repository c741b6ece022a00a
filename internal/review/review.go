package review

import (
	"sort"
	"strings"
	"time"

	"sparxfest/internal/model"
)

const FilterAll = "all"

// Filters are the three dashboard predicates. They compose with logical AND
// and are always applied to the canonical list, never mutating it.
type Filters struct {
	Search  string
	Event   string
	Payment string
}

func (f Filters) normalized() Filters {
	if f.Event == "" {
		f.Event = FilterAll
	}
	if f.Payment == "" {
		f.Payment = FilterAll
	}
	return f
}

// Sort orders newest first by submission timestamp. Records without a
// timestamp go last. The sort is stable, so ties keep their incoming order.
func Sort(regs []model.Registration) []model.Registration {
	out := make([]model.Registration, len(regs))
	copy(out, regs)
	sort.SliceStable(out, func(i, j int) bool {
		ti, iok := parseTime(out[i].Timestamp)
		tj, jok := parseTime(out[j].Timestamp)
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		return ti.After(tj)
	})
	return out
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Apply returns the rows matching all three predicates, in input order.
func Apply(regs []model.Registration, f Filters) []model.Registration {
	f = f.normalized()
	out := make([]model.Registration, 0, len(regs))
	for _, reg := range regs {
		if matchesSearch(reg, f.Search) && matchesEvent(reg, f.Event) && matchesPayment(reg, f.Payment) {
			out = append(out, reg)
		}
	}
	return out
}

func matchesSearch(reg model.Registration, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(reg.FullName), term) ||
		strings.Contains(strings.ToLower(reg.Email), term) ||
		strings.Contains(strings.ToLower(reg.College), term)
}

func matchesEvent(reg model.Registration, event string) bool {
	if event == FilterAll {
		return true
	}
	for _, name := range reg.Events {
		if name == event {
			return true
		}
	}
	return false
}

func matchesPayment(reg model.Registration, payment string) bool {
	if payment == FilterAll {
		return true
	}
	return strings.EqualFold(reg.PaymentMethod, payment)
}

// EventOptions derives the filter choices from the loaded registrations, not
// from the static catalog: only events somebody actually picked show up.
func EventOptions(regs []model.Registration) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, reg := range regs {
		for _, name := range reg.Events {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// FeeTotals is the fee summary shown above the table: the filtered rows as a
// whole and the cash/upi splits of the same rows.
type FeeTotals struct {
	All  int
	Cash int
	UPI  int
}

func Summarize(regs []model.Registration) FeeTotals {
	var t FeeTotals
	for _, reg := range regs {
		t.All += reg.TotalFee
		switch strings.ToLower(reg.PaymentMethod) {
		case model.PaymentCash:
			t.Cash += reg.TotalFee
		case model.PaymentUPI:
			t.UPI += reg.TotalFee
		}
	}
	return t
}
