// Package autoencoder implements the dense D→h→h/2→h→D reconstruction network used
// as the anomaly detector, its full batch Adam trainer and the evaluation metrics
package autoencoder

import (
	"math"
	"math/rand/v2"

	perr "prsentinel/internal/platform/errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ModelType names this family in artifacts and registry rows
const ModelType = "Autoencoder"

// DefaultHidden is the width of the first encoder layer
const DefaultHidden = 64

// numLayers is fixed by the architecture
const numLayers = 4

// Layer is one affine map y = xW + b. W is In×Out so a batch X (n×In) maps to n×Out
type Layer struct {
	W *mat.Dense
	B []float64
}

func (l *Layer) in() int  { r, _ := l.W.Dims(); return r }
func (l *Layer) out() int { _, c := l.W.Dims(); return c }

// LayerParams is the portable form of a Layer. Weights are row major In×Out
type LayerParams struct {
	In      int       `json:"in"`
	Out     int       `json:"out"`
	Weights []float64 `json:"weights"`
	Bias    []float64 `json:"bias"`
}

// Network is the autoencoder. After training it is read only and safe for concurrent Score calls
type Network struct {
	dim    int
	hidden int
	layers [numLayers]*Layer
}

// New builds a network for input width dim with weights drawn from U(-1/sqrt(fan_in), 1/sqrt(fan_in))
// and zero biases. The same seed always yields the same weights
func New(dim, hidden int, seed uint64) (*Network, error) {
	if dim <= 0 {
		return nil, perr.InvalidArgf("autoencoder: input dimension must be positive, got %d", dim)
	}
	if hidden < 2 {
		return nil, perr.InvalidArgf("autoencoder: hidden width must be at least 2, got %d", hidden)
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	widths := [numLayers + 1]int{dim, hidden, hidden / 2, hidden, dim}

	n := &Network{dim: dim, hidden: hidden}
	for i := range numLayers {
		in, out := widths[i], widths[i+1]
		lim := 1 / math.Sqrt(float64(in))
		u := distuv.Uniform{Min: -lim, Max: lim, Src: src}
		w := make([]float64, in*out)
		for j := range w {
			w[j] = u.Rand()
		}
		n.layers[i] = &Layer{W: mat.NewDense(in, out, w), B: make([]float64, out)}
	}
	return n, nil
}

// FromParams rebuilds a network from persisted layers, checking every shape
func FromParams(dim, hidden int, ps []LayerParams) (*Network, error) {
	if len(ps) != numLayers {
		return nil, perr.InvalidArgf("autoencoder: expected %d layers, got %d", numLayers, len(ps))
	}
	if dim <= 0 || hidden < 2 {
		return nil, perr.InvalidArgf("autoencoder: bad shape dim=%d hidden=%d", dim, hidden)
	}
	widths := [numLayers + 1]int{dim, hidden, hidden / 2, hidden, dim}
	n := &Network{dim: dim, hidden: hidden}
	for i, p := range ps {
		if p.In != widths[i] || p.Out != widths[i+1] {
			return nil, perr.InvalidArgf("autoencoder: layer %d is %dx%d, want %dx%d", i, p.In, p.Out, widths[i], widths[i+1])
		}
		if len(p.Weights) != p.In*p.Out || len(p.Bias) != p.Out {
			return nil, perr.InvalidArgf("autoencoder: layer %d has %d weights and %d biases", i, len(p.Weights), len(p.Bias))
		}
		w := append([]float64(nil), p.Weights...)
		n.layers[i] = &Layer{W: mat.NewDense(p.In, p.Out, w), B: append([]float64(nil), p.Bias...)}
	}
	return n, nil
}

// Params exports a deep copy of the layers
func (n *Network) Params() []LayerParams {
	out := make([]LayerParams, numLayers)
	for i, l := range n.layers {
		out[i] = LayerParams{
			In:      l.in(),
			Out:     l.out(),
			Weights: append([]float64(nil), l.W.RawMatrix().Data...),
			Bias:    append([]float64(nil), l.B...),
		}
	}
	return out
}

// Dim is the input and output width
func (n *Network) Dim() int { return n.dim }

// Hidden is the first encoder width
func (n *Network) Hidden() int { return n.hidden }

// pass holds the activations of one forward pass. z[i] is the pre activation of layer i,
// a[i] its input (a[0] is the batch itself)
type pass struct {
	a [numLayers]*mat.Dense
	z [numLayers]*mat.Dense
}

// forward runs x (n×dim) through the network. ReLU follows every layer but the last
func (n *Network) forward(x *mat.Dense) *pass {
	p := &pass{}
	cur := x
	for i, l := range n.layers {
		p.a[i] = cur
		rows, _ := cur.Dims()
		z := mat.NewDense(rows, l.out(), nil)
		z.Mul(cur, l.W)
		addBias(z, l.B)
		p.z[i] = z
		if i == numLayers-1 {
			break
		}
		act := mat.DenseCopyOf(z)
		relu(act)
		cur = act
	}
	return p
}

// Reconstruct returns the network output for x
func (n *Network) Reconstruct(x *mat.Dense) *mat.Dense {
	return n.forward(x).z[numLayers-1]
}

// ReconstructionErrors is the per row mean squared error between x and its reconstruction
func (n *Network) ReconstructionErrors(x *mat.Dense) []float64 {
	return rowMSE(x, n.Reconstruct(x))
}

// Score returns the reconstruction error of one feature vector. A vector of the wrong
// width is an InvalidArgument error
func (n *Network) Score(features []float64) (float64, error) {
	if len(features) != n.dim {
		return 0, perr.WithField(
			perr.InvalidArgf("expected %d features, got %d", n.dim, len(features)),
			"features",
		)
	}
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, perr.WithField(perr.InvalidArgf("feature %d is not finite", i), "features")
		}
	}
	x := mat.NewDense(1, n.dim, append([]float64(nil), features...))
	return n.ReconstructionErrors(x)[0], nil
}

func addBias(z *mat.Dense, b []float64) {
	raw := z.RawMatrix()
	for r := 0; r < raw.Rows; r++ {
		row := raw.Data[r*raw.Stride : r*raw.Stride+raw.Cols]
		for j := range row {
			row[j] += b[j]
		}
	}
}

func relu(m *mat.Dense) {
	m.Apply(func(_, _ int, v float64) float64 { return max(v, 0) }, m)
}

func rowMSE(x, y *mat.Dense) []float64 {
	rows, cols := x.Dims()
	out := make([]float64, rows)
	for r := range rows {
		xr, yr := x.RawRowView(r), y.RawRowView(r)
		var s float64
		for j := range cols {
			d := yr[j] - xr[j]
			s += d * d
		}
		out[r] = s / float64(cols)
	}
	return out
}
