package features

// Vectorize builds the full feature vector of r against vocab: the numeric block
// followed by the tf-idf block. Its length is always vocab.Dim()
func Vectorize(r Record, vocab *Vocabulary) []float64 {
	out := make([]float64, vocab.Dim())
	VectorizeInto(r, vocab, out)
	return out
}

// VectorizeInto is Vectorize writing into a caller owned row of length vocab.Dim()
func VectorizeInto(r Record, vocab *Vocabulary, dst []float64) {
	num := r.Numeric()
	copy(dst[:NumericFields], num[:])
	if vocab.Size() > 0 {
		vocab.Transform(r.Text(), dst[NumericFields:])
	}
}

// Texts extracts the documents of rs in order
func Texts(rs []Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Text()
	}
	return out
}
