// Package costs accumulates construction cost line items and projects the
// construction spend through time under monthly cost inflation.
package costs

import (
	"github.com/iwvelando/construction-forecast/pkg/mathutil"
	"github.com/iwvelando/construction-forecast/pkg/params"
)

// Quantities are the physical measures the cost rates apply to.
type Quantities struct {
	GrossSqm float64 `json:"grossSqm"`
	NetSqm   float64 `json:"netSqm"`
	LandSqm  float64 `json:"landSqm"`
	Units    int     `json:"units"`
}

// Of returns the quantity a rate with the given tag is multiplied by.
func (q Quantities) Of(tag params.AppliesTo) float64 {
	switch tag {
	case params.PerGrossSqm:
		return q.GrossSqm
	case params.PerNetSqm:
		return q.NetSqm
	case params.PerLandSqm:
		return q.LandSqm
	case params.FixedPerUnit:
		return float64(q.Units)
	}
	return 0
}

// Pass identifies the accumulation pass a line was added in.
type Pass int

const (
	// PassFixed holds quantity-based items.
	PassFixed Pass = 1
	// PassPercentage holds items that are a percentage of the running subtotal.
	PassPercentage Pass = 2
)

// Line is one itemized cost.
type Line struct {
	ID        params.ID        `json:"id"`
	Label     string           `json:"label"`
	AppliesTo params.AppliesTo `json:"appliesTo"`
	Source    params.Source    `json:"source"`
	Rate      float64          `json:"rate"`
	// Base is the quantity (pass 1) or the running subtotal (pass 2) the rate applied to.
	Base   float64 `json:"base"`
	Amount float64 `json:"amount"`
	Pass   Pass    `json:"pass"`
}

// Accumulation is the result of the two-pass cost accumulation.
type Accumulation struct {
	Lines []Line `json:"lines"`
	// FixedSubtotal is the sum of the quantity-based items.
	FixedSubtotal float64 `json:"fixedSubtotal"`
	// Subtotal is the construction subtotal after every percentage item.
	Subtotal float64 `json:"subtotal"`
}

// Amount returns the accumulated amount of one line.
func (a Accumulation) Amount(id params.ID) float64 {
	for _, line := range a.Lines {
		if line.ID == id {
			return line.Amount
		}
	}
	return 0
}

// Accumulate builds the construction subtotal in two ordered passes. The
// first pass sums every quantity-based item. The second pass applies the
// percentage items in their declared sequence, each adding
// subtotal × rate/100 to the running subtotal before the next is applied.
func Accumulate(snapshot params.Snapshot, q Quantities) Accumulation {
	var acc Accumulation

	for _, def := range params.OfKind(params.KindCost) {
		if !def.AppliesTo.IsQuantityBased() {
			continue
		}
		p, _ := snapshot.Get(def.ID)
		base := q.Of(def.AppliesTo)
		amount := p.Value * base
		acc.Lines = append(acc.Lines, Line{
			ID:        def.ID,
			Label:     def.Label,
			AppliesTo: def.AppliesTo,
			Source:    p.Source,
			Rate:      p.Value,
			Base:      base,
			Amount:    amount,
			Pass:      PassFixed,
		})
		acc.FixedSubtotal += amount
	}

	subtotal := acc.FixedSubtotal
	for _, def := range params.PercentageSequence() {
		p, _ := snapshot.Get(def.ID)
		amount := mathutil.ApplyPercentage(subtotal, p.Value)
		acc.Lines = append(acc.Lines, Line{
			ID:        def.ID,
			Label:     def.Label,
			AppliesTo: def.AppliesTo,
			Source:    p.Source,
			Rate:      p.Value,
			Base:      subtotal,
			Amount:    amount,
			Pass:      PassPercentage,
		})
		subtotal += amount
	}
	acc.Subtotal = subtotal

	return acc
}
