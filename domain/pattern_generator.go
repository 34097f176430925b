package domain

import (
	"math"
	"math/rand"
	"time"

	"github.com/desim-go/desim"
)

// patternEpoch anchors the synthetic wall-clock date-time used solely to
// extract calendar components (hour-of-day, day-of-week, ...) from a
// simulated duration. The epoch's absolute value is arbitrary; only its
// calendar alignment (it starts at midnight on a fixed date) matters.
var patternEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Cycle is a user-declared custom seasonality: Factors has an arbitrary
// number of equal-width buckets spanning one Interval of simulated time.
// PatternGenerator tracks each cycle's phase continuously (it advances on
// every candidate draw, accepted or rejected), not by calendar alignment.
type Cycle struct {
	Interval time.Duration
	Factors  []float64
}

// normalizedCycle is a Cycle after normalization, with its own running
// phase.
type normalizedCycle struct {
	interval time.Duration
	factors  []float64
	max      float64
	elapsed  time.Duration
}

func (c *normalizedCycle) advance(delta time.Duration) {
	if c.interval <= 0 {
		return
	}
	c.elapsed = (c.elapsed + delta) % c.interval
}

func (c *normalizedCycle) currentFactor() float64 {
	idx := int(float64(c.elapsed) / float64(c.interval) * float64(len(c.factors)))
	if idx >= len(c.factors) {
		idx = len(c.factors) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return c.factors[idx]
}

// PatternGeneratorConfig declares the baseline rate and optional
// multiplicative seasonal factor lists. Any list may be left nil or
// all-zero, in which case it normalizes to a flat list of 1s (no seasonal
// effect on that dimension).
type PatternGeneratorConfig struct {
	MeanHourlyRate float64

	HourOfDay   []float64 // padded/truncated to length 24
	DayOfWeek   []float64 // padded/truncated to length 7
	DayOfMonth  []float64 // padded/truncated to length 31
	MonthOfYear []float64 // padded/truncated to length 12
	Year        []float64 // arbitrary length, indexed cyclically from the epoch year

	CustomCycles []Cycle
}

// PatternGenerator emits arrivals as a non-homogeneous Poisson process via
// thinning against a dominating homogeneous process at the peak rate.
type PatternGenerator struct {
	*desim.Sandbox

	meanHourlyRate float64

	hourOfDay   []float64
	dayOfWeek   []float64
	dayOfMonth  []float64
	monthOfYear []float64
	year        []float64

	maxHourOfDay   float64
	maxDayOfWeek   float64
	maxDayOfMonth  float64
	maxMonthOfYear float64
	maxYear        float64

	customCycles []*normalizedCycle

	peakRate float64 // lambda*, arrivals per hour

	onArrive func(count int)

	isOn   bool
	cursor time.Duration // absolute simulated time of the last accepted/candidate draw
	count  int
}

// NewPatternGenerator constructs a PatternGenerator sandbox from cfg.
func NewPatternGenerator(id string, seed int64, cfg PatternGeneratorConfig, onArrive func(count int)) *PatternGenerator {
	pg := &PatternGenerator{
		Sandbox:        desim.NewSandbox(id, seed),
		meanHourlyRate: cfg.MeanHourlyRate,
		hourOfDay:      normalizeFixed(cfg.HourOfDay, 24),
		dayOfWeek:      normalizeFixed(cfg.DayOfWeek, 7),
		dayOfMonth:     normalizeFixed(cfg.DayOfMonth, 31),
		monthOfYear:    normalizeFixed(cfg.MonthOfYear, 12),
		year:           normalizeArbitrary(cfg.Year),
		onArrive:       onArrive,
	}
	pg.maxHourOfDay = maxOf(pg.hourOfDay)
	pg.maxDayOfWeek = maxOf(pg.dayOfWeek)
	pg.maxDayOfMonth = maxOf(pg.dayOfMonth)
	pg.maxMonthOfYear = maxOf(pg.monthOfYear)
	pg.maxYear = maxOf(pg.year)

	for _, c := range cfg.CustomCycles {
		factors := normalizeArbitrary(c.Factors)
		pg.customCycles = append(pg.customCycles, &normalizedCycle{
			interval: c.Interval,
			factors:  factors,
			max:      maxOf(factors),
		})
	}

	pg.peakRate = pg.meanHourlyRate * pg.maxHourOfDay * pg.maxDayOfWeek * pg.maxDayOfMonth * pg.maxMonthOfYear * pg.maxYear
	for _, c := range pg.customCycles {
		pg.peakRate *= c.max
	}

	pg.OnWarmedUp(pg.warmedUpHandler)
	return pg
}

// PeakRate returns lambda*, the dominating homogeneous process rate (in
// arrivals per hour) the thinning loop draws candidates from.
func (pg *PatternGenerator) PeakRate() float64 { return pg.peakRate }

// IsOn reports whether the generator is currently emitting arrivals.
func (pg *PatternGenerator) IsOn() bool { return pg.isOn }

// Count returns the number of arrivals emitted since Start or the last
// warm-up.
func (pg *PatternGenerator) Count() int { return pg.count }

// Start transitions the generator on and schedules the first arrival
// search. A no-op if already on.
func (pg *PatternGenerator) Start() {
	if pg.isOn {
		return
	}
	pg.isOn = true
	pg.count = 0
	pg.cursor = pg.ClockTime()
	pg.scheduleNextArrival()
}

// End transitions the generator off. Arrivals already scheduled still
// fire, but are ignored (same guard idiom as Generator.End).
func (pg *PatternGenerator) End() {
	pg.isOn = false
}

// scheduleNextArrival runs the thinning loop: draw a candidate gap from the
// dominating process, advance every custom cycle's phase by that gap
// (continuously, whether or not the candidate is ultimately accepted),
// evaluate the synthetic calendar date against every seasonal dimension
// (drawing one uniform per dimension every iteration, never short-circuit,
// so the RNG draw sequence is independent of how many dimensions reject),
// and re-draw from the rejected candidate's time until every dimension
// accepts.
func (pg *PatternGenerator) scheduleNextArrival() {
	rng := pg.DefaultRng()
	if pg.peakRate <= 0 {
		return
	}
	for {
		u := rng.Float64()
		deltaHours := -math.Log(1-u) / pg.peakRate
		delta := time.Duration(deltaHours * float64(time.Hour))
		pg.cursor += delta

		for _, c := range pg.customCycles {
			c.advance(delta)
		}

		synthetic := patternEpoch.Add(pg.cursor)
		accepted := true

		if !pg.acceptDimension(rng, pg.hourOfDay[synthetic.Hour()], pg.maxHourOfDay) {
			accepted = false
		}
		if !pg.acceptDimension(rng, pg.dayOfWeek[int(synthetic.Weekday())], pg.maxDayOfWeek) {
			accepted = false
		}
		dayFactor := pg.dayOfMonth[synthetic.Day()-1] * 31.0 / float64(daysInMonth(synthetic.Year(), synthetic.Month()))
		if !pg.acceptDimension(rng, dayFactor, pg.maxDayOfMonth) {
			accepted = false
		}
		if !pg.acceptDimension(rng, pg.monthOfYear[int(synthetic.Month())-1], pg.maxMonthOfYear) {
			accepted = false
		}
		yearIdx := mod(synthetic.Year()-patternEpoch.Year(), len(pg.year))
		if !pg.acceptDimension(rng, pg.year[yearIdx], pg.maxYear) {
			accepted = false
		}
		for _, c := range pg.customCycles {
			if !pg.acceptDimension(rng, c.currentFactor(), c.max) {
				accepted = false
			}
		}

		if accepted {
			break
		}
	}

	delay := pg.cursor - pg.ClockTime()
	_, _ = pg.Schedule(pg.onArrivalEvent, delay, "arrival")
}

// acceptDimension draws a single uniform and reports whether this
// dimension's acceptance test passes. A zero maxFactor (degenerate,
// all-factors-zero list normalized away already) always accepts.
func (pg *PatternGenerator) acceptDimension(rng *rand.Rand, factor, max float64) bool {
	u := rng.Float64()
	if max == 0 {
		return true
	}
	return u <= factor/max
}

func (pg *PatternGenerator) onArrivalEvent() {
	if !pg.isOn {
		return
	}
	pg.count++
	if pg.onArrive != nil {
		pg.onArrive(pg.count)
	}
	pg.scheduleNextArrival()
}

func (pg *PatternGenerator) warmedUpHandler() {
	pg.count = 0
}

func normalizeFixed(raw []float64, fixedLen int) []float64 {
	out := make([]float64, fixedLen)
	for i := 0; i < fixedLen; i++ {
		if i < len(raw) && raw[i] > 0 {
			out[i] = raw[i]
		}
	}
	return rescaleToUnitMean(out)
}

func normalizeArbitrary(raw []float64) []float64 {
	if len(raw) == 0 {
		return []float64{1}
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		if v > 0 {
			out[i] = v
		}
	}
	return rescaleToUnitMean(out)
}

// rescaleToUnitMean rescales out so its arithmetic mean is 1. An all-zero
// list becomes a list of 1s.
func rescaleToUnitMean(out []float64) []float64 {
	sum := 0.0
	for _, v := range out {
		sum += v
	}
	if sum == 0 {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	mean := sum / float64(len(out))
	for i := range out {
		out[i] /= mean
	}
	return out
}

func maxOf(vals []float64) float64 {
	m := 0.0
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// daysInMonth returns the number of days in the given calendar month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
