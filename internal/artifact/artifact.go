// Package artifact loads the serialized model bundle produced by the offline
// training job and scores feature vectors with it. The bundle is read once at
// startup and never mutated; concurrent reads are safe.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// LoadError marks an artifact that cannot be served with. The process must
// refuse to start on it rather than score with an inconsistent bundle.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("model artifact %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrDimensionMismatch is returned by PredictProba when the vector length
// does not match the classifier's input dimensionality.
var ErrDimensionMismatch = errors.New("feature vector dimension mismatch")

type logisticModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

type scalerParams struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

type bundle struct {
	Model               logisticModel     `json:"model"`
	Scaler              scalerParams      `json:"scaler"`
	FeatureCols         []string          `json:"feature_cols"`
	NumericCols         []string          `json:"numeric_cols"`
	ReferenceCategories map[string]string `json:"reference_categories"`
}

// Artifact is the immutable model bundle: fitted logistic-regression
// parameters, per-column scaler parameters, the ordered feature-column list
// the classifier expects, and the reference category dropped per categorical
// field when the training set was one-hot encoded.
type Artifact struct {
	weights    []float64
	bias       float64
	cols       []string
	colIndex   map[string]int
	numeric    []string
	mean       map[string]float64
	std        map[string]float64
	references map[string]string
}

// Load reads and validates the bundle at path. Any inconsistency between the
// classifier, the scaler and the feature-column list is a LoadError.
func Load(path string) (*Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	var b bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("decode bundle: %w", err)}
	}
	a, err := fromBundle(&b)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return a, nil
}

func fromBundle(b *bundle) (*Artifact, error) {
	if len(b.FeatureCols) == 0 {
		return nil, fmt.Errorf("empty feature_cols")
	}
	if len(b.Model.Weights) != len(b.FeatureCols) {
		return nil, fmt.Errorf("classifier expects %d features, feature_cols has %d",
			len(b.Model.Weights), len(b.FeatureCols))
	}
	if len(b.Scaler.Mean) != len(b.NumericCols) || len(b.Scaler.Std) != len(b.NumericCols) {
		return nil, fmt.Errorf("scaler has %d/%d params for %d numeric_cols",
			len(b.Scaler.Mean), len(b.Scaler.Std), len(b.NumericCols))
	}

	colIndex := make(map[string]int, len(b.FeatureCols))
	for i, c := range b.FeatureCols {
		if _, dup := colIndex[c]; dup {
			return nil, fmt.Errorf("duplicate feature column %q", c)
		}
		colIndex[c] = i
	}

	mean := make(map[string]float64, len(b.NumericCols))
	std := make(map[string]float64, len(b.NumericCols))
	for i, c := range b.NumericCols {
		if _, ok := colIndex[c]; !ok {
			return nil, fmt.Errorf("numeric column %q not in feature_cols", c)
		}
		if b.Scaler.Std[i] <= 0 {
			return nil, fmt.Errorf("numeric column %q has non-positive std %v", c, b.Scaler.Std[i])
		}
		mean[c] = b.Scaler.Mean[i]
		std[c] = b.Scaler.Std[i]
	}

	refs := b.ReferenceCategories
	if refs == nil {
		refs = map[string]string{}
	}
	return &Artifact{
		weights:    b.Model.Weights,
		bias:       b.Model.Bias,
		cols:       b.FeatureCols,
		colIndex:   colIndex,
		numeric:    b.NumericCols,
		mean:       mean,
		std:        std,
		references: refs,
	}, nil
}

// FeatureCols returns the ordered column list the classifier was fitted on.
// Callers must not mutate the returned slice.
func (a *Artifact) FeatureCols() []string { return a.cols }

// NumericCols returns the columns that carry scaler-normalized values.
func (a *Artifact) NumericCols() []string { return a.numeric }

// ColIndex returns the position of col in the feature-column list.
func (a *Artifact) ColIndex(col string) (int, bool) {
	i, ok := a.colIndex[col]
	return i, ok
}

// Scale normalizes a raw value for the given numeric column using the stored
// mean and std. The parameters come from the training fit; they are never
// refit at serving time.
func (a *Artifact) Scale(col string, v float64) (float64, bool) {
	m, ok := a.mean[col]
	if !ok {
		return v, false
	}
	return (v - m) / a.std[col], true
}

// ReferenceCategory returns the category dropped for field during
// training-time one-hot encoding.
func (a *Artifact) ReferenceCategory(field string) (string, bool) {
	ref, ok := a.references[field]
	return ref, ok
}

// PredictProba scores an aligned feature vector, returning the churn
// probability in [0,1].
func (a *Artifact) PredictProba(vec []float64) (float64, error) {
	if len(vec) != len(a.weights) {
		return 0, fmt.Errorf("%w: got %d values, classifier expects %d",
			ErrDimensionMismatch, len(vec), len(a.weights))
	}
	sum := a.bias
	for i, v := range vec {
		sum += a.weights[i] * v
	}
	return sigmoid(sum), nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
