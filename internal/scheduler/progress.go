package scheduler

// Progress receives human-readable status updates at lesson and phase granularity.
// Purely observational; implementations must never influence scheduling decisions.
type Progress interface {
	Update(message string, percent float64)
}

// NopProgress discards updates.
type NopProgress struct{}

// Update implements Progress.
func (NopProgress) Update(string, float64) {}

// ProgressFunc adapts a function to the Progress interface.
type ProgressFunc func(message string, percent float64)

// Update implements Progress.
func (f ProgressFunc) Update(message string, percent float64) { f(message, percent) }
