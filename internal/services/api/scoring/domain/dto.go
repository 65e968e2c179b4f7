package domain

import "time"

// PredictInput is the /predict body. Extra fields are ignored
type PredictInput struct {
	Features []float64 `json:"features"`
}

// PredictOutput is the /predict response, written without the envelope
type PredictOutput struct {
	ReconstructionError float64 `json:"reconstruction_error" example:"0.0123"`
}

// PRInput holds raw pull request attributes to score with the model's own vocabulary
type PRInput struct {
	Additions         int64    `json:"additions"          validate:"gte=0"`
	Deletions         int64    `json:"deletions"          validate:"gte=0"`
	ChangedFiles      int64    `json:"changed_files"      validate:"gte=0"`
	AssigneesCount    int64    `json:"assignees_count"    validate:"gte=0"`
	CommitsCount      int64    `json:"commits_count"      validate:"gte=0"`
	AuthorAssociation string   `json:"author_association" example:"CONTRIBUTOR"`
	Labels            []string `json:"labels"`
	Title             string   `json:"title"              example:"Bump lodash"`
	Body              string   `json:"body"`
}

// PROutput is the thresholded score of one pull request
type PROutput struct {
	ReconstructionError float64 `json:"reconstruction_error"`
	Threshold           float64 `json:"threshold"`
	Anomalous           bool    `json:"anomalous"`
}

// ModelInfo describes the served model. Metrics are null when undefined
type ModelInfo struct {
	ID        string    `json:"id,omitempty"`
	RunID     string    `json:"run_id"`
	ModelType string    `json:"model_type" example:"Autoencoder"`
	Source    string    `json:"source"`
	InputDim  int       `json:"input_dim"`
	Hidden    int       `json:"hidden"`
	VocabSize int       `json:"vocab_size"`
	Epochs    int       `json:"epochs"`
	Threshold float64   `json:"threshold"`
	F1        *float64  `json:"f1"`
	AUC       *float64  `json:"auc"`
	FinalLoss *float64  `json:"final_loss"`
	CreatedAt time.Time `json:"created_at"`
}

// HealthOutput is the liveness payload. The process is alive even without a model
type HealthOutput struct {
	Status string `json:"status" example:"ok"`
	Ready  bool   `json:"ready"`
}

// ReadyOutput is the readiness payload
type ReadyOutput struct {
	Status string `json:"status" example:"ready"`
	Error  string `json:"error,omitempty"`
}
