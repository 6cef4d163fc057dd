package models

import "fmt"

// Form and JSON field names of a rent prediction request.
const (
	FieldPropertySubject  = "propertySubject"
	FieldUnitType         = "unitType"
	FieldUnitStatus       = "unitStatus"
	FieldOccupiedUnits    = "occupiedUnits"
	FieldVacantUnits      = "vacantUnits"
	FieldClientBaseRent   = "clientBaseRent"
	FieldClientRentOfCare = "clientRentOfCare"
	FieldMarketBaseRent   = "marketBaseRent"
	FieldMarketRentOfCare = "marketRentOfCare"
	FieldDesiredOccupancy = "desiredOccupancy"
)

type FieldKind int

const (
	KindEnum FieldKind = iota
	KindNumber
)

// FieldSpec describes one input of the form and the model parameter it is
// forwarded as.
type FieldSpec struct {
	Name    string
	Label   string
	Kind    FieldKind
	Options []string
	Default string
	Param   string
}

var (
	PropertySubjects = []string{"AL", "ML", "Other"}
	UnitTypes        = []string{"Studio", "1BHK", "2BHK"}
	UnitStatuses     = []string{"Vacant", "Occupied"}
)

// Fields is the static form layout and rename table. Its order is also the
// positional order of the model's input array.
var Fields = []FieldSpec{
	{Name: FieldPropertySubject, Label: "Property Subject", Kind: KindEnum, Options: PropertySubjects, Default: "AL", Param: "subject_prefix"},
	{Name: FieldUnitType, Label: "Unit Type", Kind: KindEnum, Options: UnitTypes, Default: "Studio", Param: "unit_category"},
	{Name: FieldUnitStatus, Label: "Unit Status", Kind: KindEnum, Options: UnitStatuses, Default: "Vacant", Param: "unit_status"},
	{Name: FieldOccupiedUnits, Label: "Occupied Units", Kind: KindNumber, Default: "0", Param: "occupied_units"},
	{Name: FieldVacantUnits, Label: "Vacant Units", Kind: KindNumber, Default: "0", Param: "vacant_units"},
	{Name: FieldClientBaseRent, Label: "Client Base Rent ($)", Kind: KindNumber, Default: "0", Param: "client_base_rent"},
	{Name: FieldClientRentOfCare, Label: "Client Rent of Care ($)", Kind: KindNumber, Default: "0", Param: "client_rent_of_care"},
	{Name: FieldMarketBaseRent, Label: "Market Base Rent ($)", Kind: KindNumber, Default: "0", Param: "market_base_rent"},
	{Name: FieldMarketRentOfCare, Label: "Market Rent of Care ($)", Kind: KindNumber, Default: "0", Param: "market_rent_of_care"},
	{Name: FieldDesiredOccupancy, Label: "Desired Occupancy Rate (%)", Kind: KindNumber, Default: "0", Param: "desired_occupancy_rate"},
}

// LookupField returns the spec for a form field name.
func LookupField(name string) (FieldSpec, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// RentPredictionRequest is the bridge request body. Numbers are pointers so a
// missing field is distinguishable from zero.
type RentPredictionRequest struct {
	PropertySubject  string   `json:"propertySubject" validate:"required,oneof=AL ML Other"`
	UnitType         string   `json:"unitType" validate:"required,oneof=Studio 1BHK 2BHK"`
	UnitStatus       string   `json:"unitStatus" validate:"required,oneof=Vacant Occupied"`
	OccupiedUnits    *float64 `json:"occupiedUnits" validate:"required,gte=0"`
	VacantUnits      *float64 `json:"vacantUnits" validate:"required,gte=0"`
	ClientBaseRent   *float64 `json:"clientBaseRent" validate:"required,gte=0"`
	ClientRentOfCare *float64 `json:"clientRentOfCare" validate:"required,gte=0"`
	MarketBaseRent   *float64 `json:"marketBaseRent" validate:"required,gte=0"`
	MarketRentOfCare *float64 `json:"marketRentOfCare" validate:"required,gte=0"`
	DesiredOccupancy *float64 `json:"desiredOccupancy" validate:"required,percent"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// value returns the typed value of a field, or false when it is unset.
func (r *RentPredictionRequest) value(field string) (interface{}, bool) {
	str := func(s string) (interface{}, bool) { return s, s != "" }
	num := func(p *float64) (interface{}, bool) {
		if p == nil {
			return nil, false
		}
		return *p, true
	}

	switch field {
	case FieldPropertySubject:
		return str(r.PropertySubject)
	case FieldUnitType:
		return str(r.UnitType)
	case FieldUnitStatus:
		return str(r.UnitStatus)
	case FieldOccupiedUnits:
		return num(r.OccupiedUnits)
	case FieldVacantUnits:
		return num(r.VacantUnits)
	case FieldClientBaseRent:
		return num(r.ClientBaseRent)
	case FieldClientRentOfCare:
		return num(r.ClientRentOfCare)
	case FieldMarketBaseRent:
		return num(r.MarketBaseRent)
	case FieldMarketRentOfCare:
		return num(r.MarketRentOfCare)
	case FieldDesiredOccupancy:
		return num(r.DesiredOccupancy)
	}
	return nil, false
}

// Set assigns a typed value to a field. Numeric fields take float64.
func (r *RentPredictionRequest) Set(field string, v interface{}) error {
	if s, ok := v.(string); ok {
		switch field {
		case FieldPropertySubject:
			r.PropertySubject = s
			return nil
		case FieldUnitType:
			r.UnitType = s
			return nil
		case FieldUnitStatus:
			r.UnitStatus = s
			return nil
		}
		return fmt.Errorf("field %s is not a text field", field)
	}

	f, ok := v.(float64)
	if !ok {
		return fmt.Errorf("field %s: unsupported value type %T", field, v)
	}
	switch field {
	case FieldOccupiedUnits:
		r.OccupiedUnits = Float(f)
	case FieldVacantUnits:
		r.VacantUnits = Float(f)
	case FieldClientBaseRent:
		r.ClientBaseRent = Float(f)
	case FieldClientRentOfCare:
		r.ClientRentOfCare = Float(f)
	case FieldMarketBaseRent:
		r.MarketBaseRent = Float(f)
	case FieldMarketRentOfCare:
		r.MarketRentOfCare = Float(f)
	case FieldDesiredOccupancy:
		r.DesiredOccupancy = Float(f)
	default:
		return fmt.Errorf("field %s is not a numeric field", field)
	}
	return nil
}

// ModelParam is one renamed parameter sent to the external model.
type ModelParam struct {
	Name  string
	Value interface{}
}

// ModelParams keeps the rename table order.
type ModelParams []ModelParam

// ToModelParams renames every request field to its model parameter. Values
// are passed through untouched.
func ToModelParams(r *RentPredictionRequest) (ModelParams, error) {
	params := make(ModelParams, 0, len(Fields))
	for _, f := range Fields {
		v, ok := r.value(f.Name)
		if !ok {
			return nil, fmt.Errorf("field %s is missing", f.Name)
		}
		params = append(params, ModelParam{Name: f.Param, Value: v})
	}
	return params, nil
}

// Values returns parameter values in table order.
func (p ModelParams) Values() []interface{} {
	out := make([]interface{}, len(p))
	for i, mp := range p {
		out[i] = mp.Value
	}
	return out
}

// Map returns parameters keyed by model parameter name.
func (p ModelParams) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(p))
	for _, mp := range p {
		out[mp.Name] = mp.Value
	}
	return out
}

// RentPrediction is the model output mapped positionally.
type RentPrediction struct {
	Info                string `json:"info"`
	SuggestedBaseRent   string `json:"suggestedBaseRent"`
	SuggestedRentOfCare string `json:"suggestedRentOfCare"`
	Recommendation      string `json:"recommendation"`
}

// PredictionTupleSize is the number of values the model returns.
const PredictionTupleSize = 4

// PredictionFromTuple maps the model's 4-tuple with no reordering.
func PredictionFromTuple(out []string) (RentPrediction, error) {
	if len(out) != PredictionTupleSize {
		return RentPrediction{}, fmt.Errorf("expected %d output values, got %d", PredictionTupleSize, len(out))
	}
	return RentPrediction{
		Info:                out[0],
		SuggestedBaseRent:   out[1],
		SuggestedRentOfCare: out[2],
		Recommendation:      out[3],
	}, nil
}

// Tuple returns the prediction in model output order.
func (p RentPrediction) Tuple() []string {
	return []string{p.Info, p.SuggestedBaseRent, p.SuggestedRentOfCare, p.Recommendation}
}
