package gradio

import (
	"os"

	"RentPredict/pkg/config"
)

// EnvToken reads the token from the environment on every call so a rotated
// secret is picked up without a restart. Fallback is used when the variable is
// unset or empty.
type EnvToken struct {
	Env      string
	Fallback string
}

// NewEnvToken builds a token source from the model config.
func NewEnvToken(cfg *config.Config) *EnvToken {
	return &EnvToken{Env: cfg.Model.TokenEnv, Fallback: cfg.Model.Token}
}

// Token returns the current token, possibly empty.
func (t *EnvToken) Token() string {
	if t.Env != "" {
		if v := os.Getenv(t.Env); v != "" {
			return v
		}
	}
	return t.Fallback
}
