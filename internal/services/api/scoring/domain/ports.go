// Package domain holds the scoring DTOs and ports
package domain

// ServicePort is consumed by handlers. Implementations are read only and safe for concurrent use
type ServicePort interface {
	Ready() bool
	Info() (ModelInfo, error)
	Predict(features []float64) (PredictOutput, error)
	ScorePR(in PRInput) (PROutput, error)
	// LoadError is why no model is served, nil when ready
	LoadError() error
}
