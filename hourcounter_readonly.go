package desim

import "time"

// ReadOnlyHourCounter is a non-mutating façade over an HourCounter: it
// exposes every derived metric but none of ObserveCount/ObserveChange/
// Pause/Resume, so a component can hand out visibility into its internal
// counters without letting the recipient perturb them. Grounded on the
// teacher's InstanceSimulator, which wraps a mutable Simulator and exposes
// only accessor methods.
type ReadOnlyHourCounter struct {
	hc *HourCounter
}

func (r *ReadOnlyHourCounter) LastTime() time.Duration             { return r.hc.LastTime() }
func (r *ReadOnlyHourCounter) LastCount() float64                  { return r.hc.LastCount() }
func (r *ReadOnlyHourCounter) TotalIncrement() float64             { return r.hc.TotalIncrement() }
func (r *ReadOnlyHourCounter) TotalDecrement() float64             { return r.hc.TotalDecrement() }
func (r *ReadOnlyHourCounter) IncrementRate() float64              { return r.hc.IncrementRate() }
func (r *ReadOnlyHourCounter) DecrementRate() float64              { return r.hc.DecrementRate() }
func (r *ReadOnlyHourCounter) TotalHours() float64                 { return r.hc.TotalHours() }
func (r *ReadOnlyHourCounter) WorkingTimeRatio() float64           { return r.hc.WorkingTimeRatio() }
func (r *ReadOnlyHourCounter) CumValue() float64                   { return r.hc.CumValue() }
func (r *ReadOnlyHourCounter) AverageCount() float64               { return r.hc.AverageCount() }
func (r *ReadOnlyHourCounter) AverageDuration() float64            { return r.hc.AverageDuration() }
func (r *ReadOnlyHourCounter) Paused() bool                        { return r.hc.Paused() }
func (r *ReadOnlyHourCounter) KeepHistory() bool                   { return r.hc.KeepHistory() }
func (r *ReadOnlyHourCounter) History() map[time.Duration]float64  { return r.hc.History() }
func (r *ReadOnlyHourCounter) HoursForCount() map[float64]float64  { return r.hc.HoursForCount() }
func (r *ReadOnlyHourCounter) Percentile(p float64) float64        { return r.hc.Percentile(p) }
func (r *ReadOnlyHourCounter) Histogram(binWidth float64) []HistogramBin {
	return r.hc.Histogram(binWidth)
}
