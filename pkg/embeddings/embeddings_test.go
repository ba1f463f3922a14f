package embeddings

import "testing"

func TestNewFastEmbedRejectsUnknownModel(t *testing.T) {
	if _, err := NewFastEmbed(Config{Model: "definitely-not-a-model"}); err == nil {
		t.Fatal("expected an error for an unknown model name")
	}
}

func TestKnownModelDimensions(t *testing.T) {
	for name, m := range knownModels {
		if m.dim != 384 && m.dim != 768 {
			t.Errorf("model %q has implausible dimension %d", name, m.dim)
		}
	}
}
