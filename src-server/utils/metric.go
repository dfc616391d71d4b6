package utils

type Metric struct {
	DatabaseRead  chan float64
	DatabaseWrite chan float64
	StoreMutation chan float64
	HttpRequest   chan float64
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:  make(chan float64),
		DatabaseWrite: make(chan float64),
		StoreMutation: make(chan float64),
		HttpRequest:   make(chan float64),
	}
}

// ReportMetric pushes a latency sample without blocking when no collector
// is listening, e.g. when metrics are disabled in tests.
func ReportMetric(ch chan float64, value float64) {
	select {
	case ch <- value:
	default:
	}
}
