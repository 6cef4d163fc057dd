package form

import (
	"RentPredict/internal/domain/models"
	"RentPredict/pkg/util"
)

const (
	MsgRequired     = "Required"
	MsgNotANumber   = "Must be a number"
	MsgNegative     = "Must be ≥ 0"
	MsgOutOfPercent = "Must be between 0 and 100"
)

// Errors maps a field name to its validation message.
type Errors map[string]string

// Validate checks every field in form order. The occupancy range check runs
// after the sign check, so a negative occupancy reports the range message.
// An empty result means the form may be submitted.
func Validate(v Values) Errors {
	errs := Errors{}
	for _, f := range models.Fields {
		if f.Kind != models.KindEnum {
			continue
		}
		if v[f.Name] == "" {
			errs[f.Name] = MsgRequired
		}
	}

	for _, f := range models.Fields {
		if f.Kind != models.KindNumber {
			continue
		}
		raw := v[f.Name]
		if raw == "" {
			errs[f.Name] = MsgRequired
			continue
		}
		n, ok := util.ParseNumber(raw)
		if !ok {
			errs[f.Name] = MsgNotANumber
			continue
		}
		if n < 0 {
			errs[f.Name] = MsgNegative
		}
	}

	if raw := v[models.FieldDesiredOccupancy]; raw != "" {
		if n, ok := util.ParseNumber(raw); ok && (n < 0 || n > 100) {
			errs[models.FieldDesiredOccupancy] = MsgOutOfPercent
		}
	}
	return errs
}
