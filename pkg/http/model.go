package http

// DataBody is the success envelope: {"data": ...}.
type DataBody struct {
	Data interface{} `json:"data"`
}

// ErrorBody is the failure envelope: {"error": "..."}; Fields is only set for
// request validation failures.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"occupiedUnits"`
	Message string                 `json:"message,omitempty" example:"Required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// FieldMessages flattens validation errors into field -> message, keeping the
// last message per field.
func FieldMessages(errs []ValidationError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		key := e.Field
		if key == "" {
			key = "_"
		}
		out[key] = e.Message
	}
	return out
}
