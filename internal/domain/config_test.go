package domain

import "testing"

func TestModelConfig_Version(t *testing.T) {
	a := DefaultModelConfig()
	if got := a.Version(); got != "text-embedding-3-small/1536/1" {
		t.Errorf("unexpected version %q", got)
	}

	b := a
	b.BundleVersion = "2"
	if a.Version() == b.Version() {
		t.Error("expected bundle version to change the model version")
	}

	c := a
	c.Instruction = "mood: "
	if a.Version() != c.Version() {
		t.Error("expected instruction to leave the model version unchanged")
	}
}
