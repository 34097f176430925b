package desim

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

// HourCounter is a piecewise-constant integrator of a scalar count over
// simulated time, tied to a sandbox's clock. Between observations the
// represented step function x(t) holds its last observed value; each
// observation closes the just-elapsed interval into the accumulators before
// recording the new value.
type HourCounter struct {
	sandbox *Sandbox

	initialTime time.Duration
	lastTime    time.Duration
	lastCount   float64

	totalIncrement float64
	totalDecrement float64
	cumValue       float64 // ∫ count·dt, in count·hours

	paused bool

	keepHistory bool
	history     map[time.Duration]float64

	// hoursForCount accumulates total hours held at each distinct count
	// value. totalHours is always the sum of these (modulo the in-progress
	// interval since lastTime, which is folded in by observe on demand).
	hoursForCount map[float64]float64
}

// newHourCounter constructs a counter bound to sandbox, initialized at the
// sandbox's current clock with count 0.
func newHourCounter(sandbox *Sandbox, keepHistory bool) *HourCounter {
	now := sandbox.ClockTime()
	hc := &HourCounter{
		sandbox:       sandbox,
		initialTime:   now,
		lastTime:      now,
		lastCount:     0,
		keepHistory:   keepHistory,
		hoursForCount: make(map[float64]float64),
	}
	if keepHistory {
		hc.history = make(map[time.Duration]float64)
	}
	return hc
}

// Sandbox returns the sandbox this counter's clock is bound to.
func (h *HourCounter) Sandbox() *Sandbox { return h.sandbox }

// Paused reports whether the counter is currently paused.
func (h *HourCounter) Paused() bool { return h.paused }

// KeepHistory reports whether per-timestamp history is being recorded.
func (h *HourCounter) KeepHistory() bool { return h.keepHistory }

// History returns the recorded timestamp→count observations, or nil if
// KeepHistory is false.
func (h *HourCounter) History() map[time.Duration]float64 {
	if !h.keepHistory {
		return nil
	}
	out := make(map[time.Duration]float64, len(h.history))
	for k, v := range h.history {
		out[k] = v
	}
	return out
}

// HoursForCount returns a snapshot of total hours held at each distinct
// count value observed so far (the in-progress interval since lastTime is
// not folded in until the next observation or derived-metric query).
func (h *HourCounter) HoursForCount() map[float64]float64 {
	out := make(map[float64]float64, len(h.hoursForCount))
	for k, v := range h.hoursForCount {
		out[k] = v
	}
	return out
}

// ObserveCount records that the represented value is now count, as of the
// bound sandbox's current clock time t. Precondition: t >= lastTime; a
// violation is a logic violation (spec §7) and panics. While paused, the
// interval since lastTime is discarded rather than accumulated.
func (h *HourCounter) ObserveCount(count float64) {
	t := h.sandbox.ClockTime()
	if t < h.lastTime {
		panic("desim: HourCounter.ObserveCount: clock has gone backwards relative to last observation")
	}

	if !h.paused {
		deltaHours := (t - h.lastTime).Hours()
		h.cumValue += deltaHours * h.lastCount
		if count > h.lastCount {
			h.totalIncrement += count - h.lastCount
		} else {
			h.totalDecrement += h.lastCount - count
		}
		h.hoursForCount[h.lastCount] += deltaHours
	}

	h.lastTime = t
	h.lastCount = count
	if h.keepHistory {
		h.history[t] = count
	}
}

// ObserveChange is equivalent to ObserveCount(lastCount + delta).
func (h *HourCounter) ObserveChange(delta float64) {
	h.ObserveCount(h.lastCount + delta)
}

// Pause closes the currently-open interval (as a virtual ObserveCount at
// the unchanged count) and stops further accumulation until Resume. A no-op
// if already paused.
func (h *HourCounter) Pause() {
	if h.paused {
		return
	}
	h.ObserveCount(h.lastCount)
	h.paused = true
}

// Resume re-opens accumulation at the current clock time. A no-op if not
// paused.
func (h *HourCounter) Resume() {
	if !h.paused {
		return
	}
	h.lastTime = h.sandbox.ClockTime()
	h.paused = false
}

// sync folds the in-progress interval since lastTime into the accumulators
// without advancing lastCount — a virtual ObserveCount(lastCount) used by
// every derived-metric getter so queries reflect the current clock even
// between explicit observations.
func (h *HourCounter) sync() {
	h.ObserveCount(h.lastCount)
}

// totalHoursLocked returns Σ hoursForCount, which by invariant equals
// totalHours after sync.
func (h *HourCounter) totalHoursLocked() float64 {
	values := make([]float64, 0, len(h.hoursForCount))
	for _, v := range h.hoursForCount {
		values = append(values, v)
	}
	return floats.Sum(values)
}

// TotalHours returns the accumulated active duration, in hours, excluding
// any paused intervals.
func (h *HourCounter) TotalHours() float64 {
	h.sync()
	return h.totalHoursLocked()
}

// LastTime returns the timestamp of the most recent observation.
func (h *HourCounter) LastTime() time.Duration { return h.lastTime }

// LastCount returns the most recently observed count.
func (h *HourCounter) LastCount() float64 { return h.lastCount }

// TotalIncrement returns the sum of all positive count deltas observed.
func (h *HourCounter) TotalIncrement() float64 {
	h.sync()
	return h.totalIncrement
}

// TotalDecrement returns the sum of all negative count deltas observed
// (as a positive magnitude).
func (h *HourCounter) TotalDecrement() float64 {
	h.sync()
	return h.totalDecrement
}

// CumValue returns ∫ count·dt in count-hours.
func (h *HourCounter) CumValue() float64 {
	h.sync()
	return h.cumValue
}

// AverageCount returns cumValue/totalHours, or lastCount if totalHours is
// zero (no time has yet elapsed).
func (h *HourCounter) AverageCount() float64 {
	h.sync()
	total := h.totalHoursLocked()
	if total == 0 {
		return h.lastCount
	}
	return h.cumValue / total
}

// IncrementRate returns totalIncrement/totalHours. May be NaN if totalHours
// is zero; callers computing derived expressions that require finiteness
// treat NaN as 0 (see AverageDuration).
func (h *HourCounter) IncrementRate() float64 {
	h.sync()
	return h.totalIncrement / h.totalHoursLocked()
}

// DecrementRate returns totalDecrement/totalHours. May be NaN if totalHours
// is zero.
func (h *HourCounter) DecrementRate() float64 {
	h.sync()
	return h.totalDecrement / h.totalHoursLocked()
}

// WorkingTimeRatio returns totalHours / (lastTime-initialTime).Hours(), or 0
// when the denominator is zero (counter created at the same instant it is
// queried).
func (h *HourCounter) WorkingTimeRatio() float64 {
	h.sync()
	span := (h.lastTime - h.initialTime).Hours()
	if span == 0 {
		return 0
	}
	return h.totalHoursLocked() / span
}

// AverageDuration applies Little's law (averageCount/decrementRate) to
// estimate the mean hours an item spends in the represented system. Returns
// 0 when decrementRate is zero (no completions observed yet), NaN or
// infinite.
func (h *HourCounter) AverageDuration() float64 {
	rate := h.DecrementRate()
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate == 0 {
		return 0
	}
	return h.AverageCount() / rate
}

// Percentile returns the smallest count value v such that the cumulative
// hours held at values <= v meet or exceed p/100 of the total hours
// recorded. p must be in [0, 100].
func (h *HourCounter) Percentile(p float64) float64 {
	h.sync()
	keys := h.sortedCounts()
	if len(keys) == 0 {
		return h.lastCount
	}
	total := 0.0
	for _, k := range keys {
		total += h.hoursForCount[k]
	}
	threshold := p / 100 * total
	running := 0.0
	for _, k := range keys {
		running += h.hoursForCount[k]
		if running >= threshold {
			return k
		}
	}
	return keys[len(keys)-1]
}

// HistogramBin is one bucket of a Histogram: [lower, lower+width) holds
// hours of accumulated time, with its probability and cumulative
// probability over the whole distribution.
type HistogramBin struct {
	Lower                 float64
	Hours                 float64
	Probability           float64
	CumulativeProbability float64
}

// Histogram partitions the observed count distribution into bins of width
// binWidth starting at 0, where bin k contains count values v with
// k*w <= v < (k+1)*w (spec §9 open question, resolved: crisp half-open
// bins, final bin always included even if only partially filled). Returns
// an empty slice for an empty counter (one with no hours recorded).
func (h *HourCounter) Histogram(binWidth float64) []HistogramBin {
	h.sync()
	if binWidth <= 0 {
		panic("desim: Histogram: binWidth must be positive")
	}
	keys := h.sortedCounts()
	if len(keys) == 0 || h.totalHoursLocked() == 0 {
		return nil
	}

	maxKey := keys[len(keys)-1]
	numBins := int(math.Floor(maxKey/binWidth)) + 1

	binHours := make([]float64, numBins)
	for _, k := range keys {
		bin := int(math.Floor(k / binWidth))
		if bin >= numBins {
			bin = numBins - 1
		}
		binHours[bin] += h.hoursForCount[k]
	}

	total := floats.Sum(binHours)
	out := make([]HistogramBin, numBins)
	cum := 0.0
	for i, hrs := range binHours {
		prob := 0.0
		if total > 0 {
			prob = hrs / total
		}
		cum += prob
		out[i] = HistogramBin{
			Lower:                 float64(i) * binWidth,
			Hours:                 hrs,
			Probability:           prob,
			CumulativeProbability: cum,
		}
	}
	return out
}

// sortedCounts returns the distinct count keys with recorded hours, in
// ascending order.
func (h *HourCounter) sortedCounts() []float64 {
	keys := make([]float64, 0, len(h.hoursForCount))
	for k := range h.hoursForCount {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

// warmedUp resets all accumulators, preserving lastCount, and re-anchors
// initialTime/lastTime to the sandbox's current clock. Registered via
// Sandbox.AddHourCounter as one of the sandbox's warm-up callbacks.
func (h *HourCounter) warmedUp() {
	now := h.sandbox.ClockTime()
	h.initialTime = now
	h.lastTime = now
	h.totalIncrement = 0
	h.totalDecrement = 0
	h.cumValue = 0
	h.hoursForCount = make(map[float64]float64)
	if h.keepHistory {
		h.history = make(map[time.Duration]float64)
	}
}

// AsReadOnly returns a non-mutating façade exposing only this counter's
// derived metrics.
func (h *HourCounter) AsReadOnly() *ReadOnlyHourCounter {
	return &ReadOnlyHourCounter{hc: h}
}
