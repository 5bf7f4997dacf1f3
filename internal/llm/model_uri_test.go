package llm

import "testing"

func TestValidateModelURIValid(t *testing.T) {
	cases := []string{
		"google://gemini-2.5",
		"ollama://llama3.2",
		"openrouter://anthropic/claude",
		"myflowise://chatflow-1@host:8080",
	}
	for _, uri := range cases {
		if err := ValidateModelURI(uri); err != nil {
			t.Errorf("ValidateModelURI(%q) = %v, want nil", uri, err)
		}
	}
}

func TestValidateModelURIInvalid(t *testing.T) {
	cases := []string{
		"",
		"no-scheme-separator",
		"unsupported://model",
		"google://",
		"ollama://   ",
	}
	for _, uri := range cases {
		if err := ValidateModelURI(uri); err == nil {
			t.Errorf("ValidateModelURI(%q) = nil, want error", uri)
		}
	}
}
