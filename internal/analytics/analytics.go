// Package analytics derives wallet and price statistics from provider data.
package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"noves-mcp-go/internal/provider"
)

// TypeCount is one row of a frequency table.
type TypeCount struct {
	Type  string
	Count int
}

// FrequencyTable counts transactions per type, remembering the order in which
// each type was first seen.
type FrequencyTable struct {
	counts map[string]int
	order  []string
}

// Frequencies builds the frequency table of the transaction types in txs.
func Frequencies(txs []provider.Transaction) FrequencyTable {
	table := FrequencyTable{counts: make(map[string]int)}
	for _, tx := range txs {
		if _, seen := table.counts[tx.Type]; !seen {
			table.order = append(table.order, tx.Type)
		}
		table.counts[tx.Type]++
	}
	return table
}

// Len returns the number of distinct types.
func (t FrequencyTable) Len() int {
	return len(t.order)
}

// Count returns the occurrences of a type.
func (t FrequencyTable) Count(txType string) int {
	return t.counts[txType]
}

// Total returns the sum of all counts.
func (t FrequencyTable) Total() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Sorted returns the table by descending count. Equal counts keep first-seen order.
func (t FrequencyTable) Sorted() []TypeCount {
	rows := make([]TypeCount, 0, len(t.order))
	for _, txType := range t.order {
		rows = append(rows, TypeCount{Type: txType, Count: t.counts[txType]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// MostCommon returns the type with the highest count. ok is false for an empty table.
func (t FrequencyTable) MostCommon() (top TypeCount, ok bool) {
	rows := t.Sorted()
	if len(rows) == 0 {
		return TypeCount{}, false
	}
	return rows[0], true
}

// Delta is the change between two prices.
type Delta struct {
	Change     float64
	Percentage float64
}

// Increased reports whether the price did not go down.
func (d Delta) Increased() bool {
	return d.Change >= 0
}

// PriceDelta computes to-from and the change relative to from. A zero starting
// price yields a zero percentage.
func PriceDelta(from, to float64) Delta {
	change := to - from
	pct := 0.0
	if from != 0 {
		pct = change / from * 100
	}
	return Delta{Change: change, Percentage: pct}
}

// ParseAmount parses a decimal price amount.
func ParseAmount(amount string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price amount %q", amount)
	}
	return v, nil
}

// Head returns the first n transactions with the semantics of a JavaScript
// slice(0, n): n past the end is clamped and a negative n counts back from the end.
func Head(txs []provider.Transaction, n int) []provider.Transaction {
	end := n
	if end < 0 {
		end += len(txs)
		if end < 0 {
			end = 0
		}
	}
	if end > len(txs) {
		end = len(txs)
	}
	return txs[:end]
}
