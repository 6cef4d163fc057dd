// Package form holds the rent prediction form state, its input mask and the
// client-side validation that gates every submission.
package form

import (
	"fmt"

	"RentPredict/internal/domain/models"
	"RentPredict/pkg/util"
)

// Values maps a form field name to its raw text.
type Values map[string]string

// NewValues returns the form with every field at its default.
func NewValues() Values {
	v := make(Values, len(models.Fields))
	for _, f := range models.Fields {
		v[f.Name] = f.Default
	}
	return v
}

// AcceptKeystroke reports whether candidate may become the new value of field.
// Numeric fields only take unsigned decimals; other fields take any text.
func AcceptKeystroke(field, candidate string) bool {
	spec, ok := models.LookupField(field)
	if !ok || spec.Kind != models.KindNumber {
		return true
	}
	return util.IsUnsignedDecimal(candidate)
}

// Set stores value when the input mask accepts it. A rejected value leaves the
// previous one in place.
func (v Values) Set(field, value string) bool {
	if !AcceptKeystroke(field, value) {
		return false
	}
	v[field] = value
	return true
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}

// Request converts the values to a typed request. Call it only after Validate
// returned no errors.
func (v Values) Request() (*models.RentPredictionRequest, error) {
	req := &models.RentPredictionRequest{}
	for _, f := range models.Fields {
		raw := v[f.Name]
		if f.Kind == models.KindEnum {
			if err := req.Set(f.Name, raw); err != nil {
				return nil, err
			}
			continue
		}
		n, ok := util.ParseNumber(raw)
		if raw == "" || !ok {
			return nil, fmt.Errorf("field %s: %q is not a number", f.Name, raw)
		}
		if err := req.Set(f.Name, n); err != nil {
			return nil, err
		}
	}
	return req, nil
}
