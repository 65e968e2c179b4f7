package autoencoder

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// DefaultThresholdK is the number of standard deviations above the mean error
const DefaultThresholdK = 2

// Threshold is mean(errs) + k·σ with σ the population standard deviation
func Threshold(errs []float64, k float64) float64 {
	if len(errs) == 0 {
		return math.NaN()
	}
	mean, std := stat.PopMeanStdDev(errs, nil)
	return mean + k*std
}

// Predict flags every error strictly above threshold
func Predict(errs []float64, threshold float64) []bool {
	out := make([]bool, len(errs))
	for i, e := range errs {
		out[i] = e > threshold
	}
	return out
}

// F1 of binary predictions against 0/1 labels, with 1 as the positive class.
// It is 0 when there are no true positives
func F1(labels []int, preds []bool) float64 {
	var tp, fp, fn int
	for i, y := range labels {
		switch {
		case y == 1 && preds[i]:
			tp++
		case y != 1 && preds[i]:
			fp++
		case y == 1 && !preds[i]:
			fn++
		}
	}
	if tp == 0 {
		return 0
	}
	return 2 * float64(tp) / float64(2*tp+fp+fn)
}

// AUC is the area under the ROC curve of scores against 0/1 labels. It is NaN when
// only one class is present
func AUC(labels []int, scores []float64) float64 {
	pos := 0
	for _, y := range labels {
		if y == 1 {
			pos++
		}
	}
	if pos == 0 || pos == len(labels) {
		return math.NaN()
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })
	y := make([]float64, len(idx))
	classes := make([]bool, len(idx))
	for i, j := range idx {
		y[i] = scores[j]
		classes[i] = labels[j] == 1
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}

// Metrics summarises a trained model on its own training table
type Metrics struct {
	F1        float64
	AUC       float64
	Loss      float64
	Threshold float64
}

// Evaluate derives the threshold and scores predictions against the weak labels
func Evaluate(errs []float64, labels []int, k float64) Metrics {
	th := Threshold(errs, k)
	return Metrics{
		F1:        F1(labels, Predict(errs, th)),
		AUC:       AUC(labels, errs),
		Threshold: th,
	}
}
