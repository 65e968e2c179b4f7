package autoencoder

import (
	"context"
	"math"
	"slices"
	"testing"

	perr "prsentinel/internal/platform/errors"

	"gonum.org/v1/gonum/mat"
)

func TestNew_Shapes(t *testing.T) {
	t.Parallel()

	n, err := New(12, 8, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]int{{12, 8}, {8, 4}, {4, 8}, {8, 12}}
	for i, p := range n.Params() {
		if p.In != want[i][0] || p.Out != want[i][1] {
			t.Fatalf("layer %d = %dx%d, want %v", i, p.In, p.Out, want[i])
		}
		lim := 1 / math.Sqrt(float64(p.In))
		for _, w := range p.Weights {
			if w < -lim || w > lim {
				t.Fatalf("layer %d weight %v outside ±%v", i, w, lim)
			}
		}
	}
}

func TestNew_RejectsBadShape(t *testing.T) {
	t.Parallel()

	if _, err := New(0, 64, 1); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("dim 0: %v", err)
	}
	if _, err := New(5, 1, 1); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("hidden 1: %v", err)
	}
}

func TestNew_SeedIsDeterministic(t *testing.T) {
	t.Parallel()

	a, _ := New(6, 4, 7)
	b, _ := New(6, 4, 7)
	c, _ := New(6, 4, 8)
	if !slices.Equal(a.Params()[0].Weights, b.Params()[0].Weights) {
		t.Fatalf("same seed produced different weights")
	}
	if slices.Equal(a.Params()[0].Weights, c.Params()[0].Weights) {
		t.Fatalf("different seeds produced identical weights")
	}
}

func TestScore_ShapeContract(t *testing.T) {
	t.Parallel()

	n, err := New(1005, DefaultHidden, 42)
	if err != nil {
		t.Fatal(err)
	}
	s, err := n.Score(make([]float64, 1005))
	if err != nil {
		t.Fatalf("Score zero vector: %v", err)
	}
	if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
		t.Fatalf("score %v is not a finite non-negative number", s)
	}

	for _, l := range []int{0, 1004, 1006} {
		_, err := n.Score(make([]float64, l))
		if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Fatalf("len %d: err = %v, want InvalidArgument", l, err)
		}
	}
	if _, err := n.Score(append(make([]float64, 1004), math.NaN())); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("NaN feature accepted: %v", err)
	}
}

func TestFromParams_RoundTrip(t *testing.T) {
	t.Parallel()

	n, _ := New(7, 4, 3)
	back, err := FromParams(7, 4, n.Params())
	if err != nil {
		t.Fatal(err)
	}
	x := []float64{1, 0, 2, 0, 3, 0.5, 0.25}
	a, _ := n.Score(x)
	b, _ := back.Score(x)
	if a != b {
		t.Fatalf("score changed after round trip: %v vs %v", a, b)
	}

	ps := n.Params()
	ps[2].Bias = ps[2].Bias[:1]
	if _, err := FromParams(7, 4, ps); err == nil {
		t.Fatalf("expected shape error")
	}
	if _, err := FromParams(8, 4, n.Params()); err == nil {
		t.Fatalf("expected dim mismatch error")
	}
}

func TestTrain_LossDecreases(t *testing.T) {
	t.Parallel()

	rows, cols := 32, 6
	data := make([]float64, rows*cols)
	for r := range rows {
		for c := range cols {
			data[r*cols+c] = float64((r+c)%3) / 2
		}
	}
	x := mat.NewDense(rows, cols, data)
	n, _ := New(cols, 8, 11)

	cfg := DefaultTrainConfig()
	cfg.Epochs = 200
	cfg.LearningRate = 1e-2
	var seen int
	losses, err := n.Train(context.Background(), x, cfg, func(EpochStat) { seen++ })
	if err != nil {
		t.Fatal(err)
	}
	if len(losses) != cfg.Epochs || seen != cfg.Epochs {
		t.Fatalf("got %d losses and %d callbacks, want %d", len(losses), seen, cfg.Epochs)
	}
	if losses[len(losses)-1] >= losses[0] {
		t.Fatalf("loss did not decrease: first %v last %v", losses[0], losses[len(losses)-1])
	}
}

func TestTrain_MatchesReportedLoss(t *testing.T) {
	t.Parallel()

	x := mat.NewDense(3, 4, []float64{1, 2, 3, 4, 0, 0, 0, 0, 4, 3, 2, 1})
	n, _ := New(4, 4, 5)
	before := n.ReconstructionErrors(x)
	var mean float64
	for _, e := range before {
		mean += e
	}
	mean /= float64(len(before))

	cfg := DefaultTrainConfig()
	cfg.Epochs = 1
	losses, err := n.Train(context.Background(), x, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(losses[0]-mean) > 1e-12 {
		t.Fatalf("epoch loss %v, want pre-update mse %v", losses[0], mean)
	}
}

func TestTrain_Errors(t *testing.T) {
	t.Parallel()

	n, _ := New(3, 4, 1)
	if _, err := n.Train(context.Background(), mat.NewDense(2, 4, nil), DefaultTrainConfig(), nil); err == nil {
		t.Fatalf("expected width mismatch error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := n.Train(ctx, mat.NewDense(2, 3, nil), DefaultTrainConfig(), nil); err == nil {
		t.Fatalf("expected context error")
	}
}

// TestBackward_MatchesFiniteDifference checks one weight gradient numerically
func TestBackward_MatchesFiniteDifference(t *testing.T) {
	t.Parallel()

	x := mat.NewDense(2, 3, []float64{0.5, -1, 2, 1, 0.25, -0.5})
	n, _ := New(3, 4, 9)
	loss := func() float64 {
		errs := n.ReconstructionErrors(x)
		return (errs[0] + errs[1]) / 2
	}

	p := n.forward(x)
	delta := mat.NewDense(2, 3, nil)
	delta.Sub(p.z[numLayers-1], x)
	delta.Scale(2/6.0, delta)
	grads := n.backward(p, delta)

	for _, li := range []int{0, 3} {
		w := n.layers[li].W
		orig := w.At(0, 1)
		const h = 1e-6
		w.Set(0, 1, orig+h)
		up := loss()
		w.Set(0, 1, orig-h)
		down := loss()
		w.Set(0, 1, orig)
		num := (up - down) / (2 * h)
		if got := grads[li].w.At(0, 1); math.Abs(got-num) > 1e-5 {
			t.Fatalf("layer %d grad %v, numeric %v", li, got, num)
		}
	}
}
