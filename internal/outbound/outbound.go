// Package outbound sizes a brute-force outbound campaign: how many messages
// have to go out to book a target number of calls.
package outbound

import (
	"math"
	"net/url"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Query parameters read by ParseInputs.
const (
	ParamReplyRate  = "reply_rate"
	ParamCalls      = "calls"
	ParamWeeks      = "weeks"
	ParamConversion = "conversion"
)

const (
	// WorkDays is the number of sending days in a week.
	WorkDays = 5
	// MaxBars caps the weekly chart.
	MaxBars = 20

	minBarHeight = 10
	maxTotal     = 1e15
)

type Badge string

const (
	BadgeChill  Badge = "Chill"
	BadgeGrind  Badge = "Reasonable grind"
	BadgePsycho Badge = "Full psycho mode"
)

// Inputs are the campaign assumptions. Rates are percentages.
type Inputs struct {
	ReplyRate  float64
	Calls      float64
	Weeks      float64
	Conversion float64
}

// Defaults is the scenario shown before anything is changed.
var Defaults = Inputs{
	ReplyRate:  10,
	Calls:      10,
	Weeks:      12,
	Conversion: 60,
}

type Bar struct {
	Label  string
	Value  int64
	Height float64 // percent of the tallest bar
}

type Plan struct {
	Inputs  Inputs
	Total   int64
	PerWeek int64
	PerDay  int64
	Badge   Badge
	Bars    []Bar
}

// NewPlan computes the message volume for in. A zero reply rate or
// conversion yields an empty plan.
func NewPlan(in Inputs) Plan {
	in.ReplyRate = math.Max(in.ReplyRate, 0)
	in.Calls = math.Max(in.Calls, 0)
	in.Conversion = math.Max(in.Conversion, 0)

	p := Plan{Inputs: in}
	// calls / (rate/100 * conversion/100) as a single division.
	if yield := in.ReplyRate * in.Conversion; yield > 0 {
		p.Total = int64(math.Min(math.Ceil(in.Calls*100*100/yield), maxTotal))
		p.PerWeek = p.Total
		if in.Weeks > 0 {
			p.PerWeek = ceilDiv(p.Total, in.Weeks)
		}
		p.PerDay = ceilDiv(p.PerWeek, WorkDays)
	}
	p.Badge = BadgeFor(p.Total)
	p.Bars = weekBars(in.Weeks, p.PerWeek)
	return p
}

func ceilDiv(n int64, d float64) int64 {
	return int64(math.Min(math.Ceil(float64(n)/d), maxTotal))
}

// BadgeFor grades how hard a campaign of total messages is.
func BadgeFor(total int64) Badge {
	switch {
	case total < 500:
		return BadgeChill
	case total <= 2000:
		return BadgeGrind
	default:
		return BadgePsycho
	}
}

func weekBars(weeks float64, perWeek int64) []Bar {
	n := int(math.Max(1, math.Min(MaxBars, math.Ceil(weeks))))
	tallest := max(perWeek, 1)
	height := math.Max(minBarHeight, float64(perWeek)/float64(tallest)*100)

	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = Bar{
			Label:  "Week " + strconv.Itoa(i+1),
			Value:  perWeek,
			Height: height,
		}
	}
	return bars
}

// ParseInputs reads Inputs from query parameters. Missing parameters keep
// their default and malformed ones count as zero.
func ParseInputs(q url.Values) Inputs {
	in := Defaults
	for param, dst := range map[string]*float64{
		ParamReplyRate:  &in.ReplyRate,
		ParamCalls:      &in.Calls,
		ParamWeeks:      &in.Weeks,
		ParamConversion: &in.Conversion,
	} {
		if !q.Has(param) {
			continue
		}
		v, err := strconv.ParseFloat(q.Get(param), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		*dst = v
	}
	return in
}

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}
