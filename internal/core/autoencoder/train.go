package autoencoder

import (
	"context"
	"math"

	perr "prsentinel/internal/platform/errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TrainConfig controls the optimizer
type TrainConfig struct {
	Epochs       int
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
}

// DefaultTrainConfig is Adam(1e-3, 0.9, 0.999, 1e-8) for 10 epochs
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{Epochs: 10, LearningRate: 1e-3, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
}

// EpochStat is reported after every epoch. Loss is the mean squared error of the
// forward pass that produced that epoch's gradients
type EpochStat struct {
	Epoch int
	Loss  float64
}

// adam keeps first and second moment estimates for one parameter slice
type adam struct {
	m, v []float64
}

func newAdam(n int) *adam { return &adam{m: make([]float64, n), v: make([]float64, n)} }

func (a *adam) step(param, grad []float64, cfg TrainConfig, t int) {
	c1 := 1 - math.Pow(cfg.Beta1, float64(t))
	c2 := 1 - math.Pow(cfg.Beta2, float64(t))
	for i, g := range grad {
		a.m[i] = cfg.Beta1*a.m[i] + (1-cfg.Beta1)*g
		a.v[i] = cfg.Beta2*a.v[i] + (1-cfg.Beta2)*g*g
		mh := a.m[i] / c1
		vh := a.v[i] / c2
		param[i] -= cfg.LearningRate * mh / (math.Sqrt(vh) + cfg.Epsilon)
	}
}

// Train fits the network to reconstruct x with full batch Adam on the MSE objective.
// onEpoch, when set, is called after each update. Cancelling ctx stops between epochs
func (n *Network) Train(ctx context.Context, x *mat.Dense, cfg TrainConfig, onEpoch func(EpochStat)) ([]float64, error) {
	rows, cols := x.Dims()
	if rows == 0 {
		return nil, perr.InvalidArgf("autoencoder: empty training matrix")
	}
	if cols != n.dim {
		return nil, perr.InvalidArgf("autoencoder: matrix has %d columns, network expects %d", cols, n.dim)
	}
	if cfg.Epochs <= 0 {
		return nil, perr.InvalidArgf("autoencoder: epochs must be positive, got %d", cfg.Epochs)
	}

	var wOpt, bOpt [numLayers]*adam
	for i, l := range n.layers {
		wOpt[i] = newAdam(len(l.W.RawMatrix().Data))
		bOpt[i] = newAdam(len(l.B))
	}

	scale := 2 / float64(rows*cols)
	losses := make([]float64, 0, cfg.Epochs)
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return losses, err
		}
		p := n.forward(x)
		out := p.z[numLayers-1]

		// dL/dout for mean over every element
		delta := mat.NewDense(rows, cols, nil)
		delta.Sub(out, x)
		loss := floats.Dot(delta.RawMatrix().Data, delta.RawMatrix().Data) / float64(rows*cols)
		delta.Scale(scale, delta)

		grads := n.backward(p, delta)
		for i, l := range n.layers {
			wOpt[i].step(l.W.RawMatrix().Data, grads[i].w.RawMatrix().Data, cfg, epoch)
			bOpt[i].step(l.B, grads[i].b, cfg, epoch)
		}

		losses = append(losses, loss)
		if onEpoch != nil {
			onEpoch(EpochStat{Epoch: epoch, Loss: loss})
		}
	}
	return losses, nil
}

type layerGrad struct {
	w *mat.Dense
	b []float64
}

// backward propagates delta (gradient w.r.t. the final pre activation) to every layer
func (n *Network) backward(p *pass, delta *mat.Dense) [numLayers]layerGrad {
	var g [numLayers]layerGrad
	for i := numLayers - 1; i >= 0; i-- {
		l := n.layers[i]
		gw := mat.NewDense(l.in(), l.out(), nil)
		gw.Mul(p.a[i].T(), delta)
		g[i] = layerGrad{w: gw, b: colSums(delta)}
		if i == 0 {
			break
		}
		rows, _ := delta.Dims()
		next := mat.NewDense(rows, l.in(), nil)
		next.Mul(delta, l.W.T())
		// ReLU gate of the previous layer
		zp := p.z[i-1]
		next.Apply(func(r, c int, v float64) float64 {
			if zp.At(r, c) > 0 {
				return v
			}
			return 0
		}, next)
		delta = next
	}
	return g
}

func colSums(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	out := make([]float64, cols)
	for r := range rows {
		floats.Add(out, m.RawRowView(r))
	}
	return out
}
