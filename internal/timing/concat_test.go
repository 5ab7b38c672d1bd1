package timing

import "testing"

func TestConcatRoundTrip(t *testing.T) {
	cases := [][]string{
		{"Hi."},
		{"Hi.", "Bye."},
		{"Hi.", "", "Bye."},
		{"[excited] Welcome!", "To define a function... we use DEF.", "That's it."},
	}

	for _, texts := range cases {
		script := Concat(texts)

		wantLen := len(SceneSeparator) * (len(texts) - 1)
		for _, text := range texts {
			wantLen += len(text)
		}
		if len(script) != wantLen {
			t.Errorf("Concat(%q): length %d, want %d", texts, len(script), wantLen)
		}

		got := Split(script)
		if len(got) != len(texts) {
			t.Fatalf("Split(Concat(%q)): %d parts, want %d", texts, len(got), len(texts))
		}
		for i := range texts {
			if got[i] != texts[i] {
				t.Errorf("round trip broke scene %d: %q != %q", i, got[i], texts[i])
			}
		}
	}
}

func TestConcatNoLeadingOrTrailingSeparator(t *testing.T) {
	script := Concat([]string{"Hi.", "Bye."})
	if script != "Hi. [pause] Bye." {
		t.Errorf("unexpected concatenation: %q", script)
	}

	if Concat([]string{"Solo."}) != "Solo." {
		t.Errorf("single scene must not grow a separator")
	}
}
