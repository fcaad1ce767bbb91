package scan

import "testing"

func TestResolveOrderNumber(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"query param", "https://x.test/track?order=ORD-777", "ORD-777"},
		{"path segment", "https://x.test/track/ABC123", "ABC123"},
		{"path with trailing slash", "https://x.test/track/ABC123/", "ABC123"},
		{"raw text longest token", "random noise ORD-5521 xx", "ORD-5521"},
		{"empty payload", "", ""},
		{"whitespace only", "   ", ""},
		{"raw order number", "ORD-9001", "ORD-9001"},
		{"param priority over path", "https://x.test/track/WRONG1?orderNumber=RIGHT2", "RIGHT2"},
		{"param value trimmed", "https://x.test/t?order=%20ORD-1%20", "ORD-1"},
		{"tie broken by first occurrence", "abc-12 xyz-34", "abc-12"},
		{"underscores kept", "scan: ORDER_2024_001!", "ORDER_2024_001"},
		{"relative url falls to tokenization", "/track/ABC123", "ABC123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveOrderNumber(tt.payload); got != tt.want {
				t.Errorf("ResolveOrderNumber(%q) = %q, want %q", tt.payload, got, tt.want)
			}
		})
	}
}

func TestResolveOrderNumberParamPriority(t *testing.T) {
	// "order" outranks "o" regardless of their order in the query string.
	got := ResolveOrderNumber("https://x.test/t?o=SECOND&order=FIRST")
	if got != "FIRST" {
		t.Errorf("ResolveOrderNumber() = %q, want %q", got, "FIRST")
	}
}

func TestResolveOrderNumberDeterministic(t *testing.T) {
	payload := "https://app.example/t?orderId=ORD-9001"
	first := ResolveOrderNumber(payload)
	for i := 0; i < 10; i++ {
		if got := ResolveOrderNumber(payload); got != first {
			t.Fatalf("ResolveOrderNumber() not deterministic: %q then %q", first, got)
		}
	}
	if first != "ORD-9001" {
		t.Errorf("ResolveOrderNumber() = %q, want %q", first, "ORD-9001")
	}
}
