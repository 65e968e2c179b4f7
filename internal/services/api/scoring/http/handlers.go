// Package http provides the scoring endpoints
package http

import (
	stdhttp "net/http"

	"prsentinel/internal/modkit/httpkit"
	"prsentinel/internal/services/api/scoring/domain"
)

// predictBody tolerates unknown fields so older clients keep working
var predictBody = httpkit.BindOptions{MaxBytes: 4 << 20}

type handlers struct{ svc domain.ServicePort }

// RegisterRoot mounts the unversioned probe and predict routes
func RegisterRoot(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	r.Post("/predict", httpkit.Handle(h.predict))
	r.Get("/health", httpkit.Handle(h.health))
	r.Get("/ready", httpkit.Handle(h.ready))
}

// Register mounts the versioned scoring routes
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/model", h.model)
	r.Post("/pr", httpkit.Handle(h.scorePR))
}

// swagger:route POST /predict Scoring scoringPredict
// @Summary Reconstruction error of a prepared feature vector
// @Tags Scoring
// @Accept json
// @Produce json
// @Param payload body domain.PredictInput true "Feature vector of length input_dim"
// @Success 200 {object} domain.PredictOutput "ok"
// @Failure 400 {object} httpkit.Envelope "malformed body"
// @Failure 409 {object} httpkit.Envelope "no model loaded"
// @Failure 422 {object} httpkit.Envelope "wrong vector length"
// @Router /predict [post]
func (h *handlers) predict(r *stdhttp.Request) httpkit.Response {
	in, err := httpkit.Bind[domain.PredictInput](r, predictBody)
	if err != nil {
		return httpkit.Error(err)
	}
	out, err := h.svc.Predict(in.Features)
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.Bare(stdhttp.StatusOK, out)
}

// swagger:route GET /health Scoring scoringHealth
// @Summary Liveness
// @Tags Scoring
// @Produce json
// @Success 200 {object} domain.HealthOutput "ok"
// @Router /health [get]
func (h *handlers) health(_ *stdhttp.Request) httpkit.Response {
	return httpkit.Bare(stdhttp.StatusOK, domain.HealthOutput{Status: "ok", Ready: h.svc.Ready()})
}

// swagger:route GET /ready Scoring scoringReady
// @Summary Readiness, 503 until a model is loaded
// @Tags Scoring
// @Produce json
// @Success 200 {object} domain.ReadyOutput "ready"
// @Failure 503 {object} domain.ReadyOutput "not ready"
// @Router /ready [get]
func (h *handlers) ready(_ *stdhttp.Request) httpkit.Response {
	if h.svc.Ready() {
		return httpkit.Bare(stdhttp.StatusOK, domain.ReadyOutput{Status: "ready"})
	}
	out := domain.ReadyOutput{Status: "not_ready"}
	if err := h.svc.LoadError(); err != nil {
		out.Error = err.Error()
	}
	return httpkit.Bare(stdhttp.StatusServiceUnavailable, out)
}

// swagger:route GET /scoring/model Scoring scoringModel
// @Summary Served model, threshold and training metrics
// @Tags Scoring
// @Produce json
// @Success 200 {object} domain.ModelInfo "ok"
// @Failure 409 {object} httpkit.Envelope "no model loaded"
// @Router /scoring/model [get]
func (h *handlers) model(_ *stdhttp.Request) (any, error) {
	return h.svc.Info()
}

// swagger:route POST /scoring/pr Scoring scoringPR
// @Summary Score raw pull request attributes against the threshold
// @Tags Scoring
// @Accept json
// @Produce json
// @Param payload body domain.PRInput true "Pull request"
// @Success 200 {object} domain.PROutput "ok"
// @Failure 400 {object} httpkit.Envelope "malformed body"
// @Failure 409 {object} httpkit.Envelope "no model loaded"
// @Router /scoring/pr [post]
func (h *handlers) scorePR(r *stdhttp.Request) httpkit.Response {
	in, err := httpkit.Bind[domain.PRInput](r)
	if err != nil {
		return httpkit.Error(err)
	}
	out, err := h.svc.ScorePR(in)
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.OK(out)
}
