package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

const rawWebhookSecret = "whsec_c2VjcmV0LXNpZ25pbmcta2V5"

func TestSecretString_Redaction(t *testing.T) {
	s := SecretString(rawWebhookSecret)

	if got := s.String(); got != redactedPlaceholder {
		t.Errorf("String() = %q, want %q", got, redactedPlaceholder)
	}

	// fmt verbs route through the Stringer.
	for _, verb := range []string{"%s", "%v"} {
		out := fmt.Sprintf("secret="+verb, s)
		if strings.Contains(out, rawWebhookSecret) {
			t.Errorf("fmt.Sprintf(%s) leaked the raw secret: %s", verb, out)
		}
	}
}

func TestSecretString_MarshalJSON(t *testing.T) {
	payload := struct {
		Secret SecretString `json:"secret"`
	}{Secret: SecretString(rawWebhookSecret)}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if strings.Contains(string(data), rawWebhookSecret) {
		t.Errorf("JSON output leaked the raw secret: %s", data)
	}
	if string(data) != `{"secret":"***REDACTED***"}` {
		t.Errorf("JSON output = %s, want redacted placeholder", data)
	}
}

func TestSecretString_Unmask(t *testing.T) {
	s := SecretString(rawWebhookSecret)
	if got := s.Unmask(); got != rawWebhookSecret {
		t.Errorf("Unmask() = %q, want the raw value", got)
	}
}
