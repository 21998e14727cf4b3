package metrics

type Counter interface {
	Inc()
}

type Metrics struct {
	OrdersPlaced   Counter
	OrdersRejected Counter
	CancelsIssued  Counter
	Crossings      Counter
	PassiveQuotes  Counter
	Nudges         Counter
	Flattens       Counter
	Resets         Counter
}

type noopCounter struct{}

func (noopCounter) Inc() {}

func NewNoop() *Metrics {
	n := noopCounter{}
	return &Metrics{
		OrdersPlaced:   n,
		OrdersRejected: n,
		CancelsIssued:  n,
		Crossings:      n,
		PassiveQuotes:  n,
		Nudges:         n,
		Flattens:       n,
		Resets:         n,
	}
}
