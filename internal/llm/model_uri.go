package llm

import (
	"fmt"
	"strings"
)

// supportedSchemes is the closed set of model-URI schemes the engine
// recognizes. Resolution from scheme to adapter is the host's
// responsibility -- the engine only validates the scheme.
var supportedSchemes = map[string]bool{
	"google":     true,
	"ollama":     true,
	"openrouter": true,
	"myflowise":  true,
}

// ValidateModelURI checks that uri has the form scheme://identifier, where
// scheme is one of the supported adapters. An optional @host[:port] suffix
// on the identifier is accepted but not interpreted.
func ValidateModelURI(uri string) error {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return fmt.Errorf("model uri %q missing scheme separator", uri)
	}
	if !supportedSchemes[scheme] {
		return fmt.Errorf("model uri %q has unsupported scheme %q", uri, scheme)
	}
	if strings.TrimSpace(rest) == "" {
		return fmt.Errorf("model uri %q missing identifier", uri)
	}
	return nil
}
