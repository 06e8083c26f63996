package features

import (
	"reflect"

	"savewise/internal/domain/profile"
	"savewise/pkg/errors"
)

const tagName = "feature"

// Vector is one model input row in Spec order
type Vector []float64

// Float32 converts the vector for tensor input
func (v Vector) Float32() []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// Encoder turns profiles into vectors for a fixed Spec.
// It is immutable and safe for concurrent use.
type Encoder struct {
	spec    Spec
	names   []string
	indexes []int // Features field index per spec position, -1 when unknown
}

// NewEncoder binds spec names to Features fields and fails unless the two
// sets are identical.
func NewEncoder(spec Spec) (*Encoder, error) {
	byTag := fieldIndexByTag()
	names := spec.Names()

	enc := &Encoder{
		spec:    spec,
		names:   names,
		indexes: make([]int, len(names)),
	}

	var errs errors.MultiError
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if seen[name] {
			errs.Add(errors.NewValidationError(name, "listed twice in feature spec", i))
		}
		seen[name] = true

		idx, ok := byTag[name]
		if !ok {
			enc.indexes[i] = -1
			errs.Add(errors.NewValidationError(name, "feature spec entry has no computed value", i))
			continue
		}
		enc.indexes[i] = idx
	}
	for tag := range byTag {
		if !seen[tag] {
			errs.Add(errors.NewValidationError(tag, "computed feature missing from feature spec", nil))
		}
	}

	if err := errs.ToError(); err != nil {
		return nil, errors.Wrap(err, "feature spec does not match computed features")
	}
	return enc, nil
}

// Spec returns the feature order the encoder was built for
func (e *Encoder) Spec() Spec {
	return e.spec
}

// Len is the encoded vector length
func (e *Encoder) Len() int {
	return len(e.names)
}

// Encode computes the features of p and lays them out in spec order
func (e *Encoder) Encode(p profile.Profile) (Vector, error) {
	values := reflect.ValueOf(Compute(p))

	vec := make(Vector, len(e.names))
	for i, idx := range e.indexes {
		if idx < 0 {
			return nil, errors.NewValidationError(e.names[i], "feature spec entry has no computed value", i)
		}
		vec[i] = values.Field(idx).Float()
	}
	return vec, nil
}

// EncodeRaw parses a decoded JSON profile and encodes it
func (e *Encoder) EncodeRaw(raw map[string]interface{}) (profile.Profile, Vector, error) {
	p, err := profile.Parse(raw)
	if err != nil {
		return profile.Profile{}, nil, err
	}
	vec, err := e.Encode(p)
	if err != nil {
		return profile.Profile{}, nil, err
	}
	return p, vec, nil
}

func fieldIndexByTag() map[string]int {
	t := reflect.TypeOf(Features{})
	out := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get(tagName); tag != "" {
			out[tag] = i
		}
	}
	return out
}
