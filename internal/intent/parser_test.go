package intent

import "testing"

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestParseSimple(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    Intent
	}{
		{
			name:    "send with recipient",
			message: "Send 200 to Nirmala",
			want:    Intent{Action: ActionSendPayment, Amount: floatPtr(200), To: strPtr("Nirmala")},
		},
		{
			name:    "thousands separator",
			message: "please transfer 1,500 ada to Bob",
			want:    Intent{Action: ActionSendPayment, Amount: floatPtr(1500), To: strPtr("Bob")},
		},
		{
			name:    "decimal amount",
			message: "pay 12.5 addr_test1xyz",
			want:    Intent{Action: ActionSendPayment, Amount: floatPtr(12.5), To: strPtr("addr_test1xyz")},
		},
		{
			name:    "first number wins",
			message: "send 3 then 4 to Ann",
			want:    Intent{Action: ActionSendPayment, Amount: floatPtr(3), To: strPtr("Ann")},
		},
		{
			name:    "no amount",
			message: "Pay Alice",
			want:    Intent{Action: ActionSendPayment, To: strPtr("Alice")},
		},
		{
			name:    "single token",
			message: "send",
			want:    Intent{Action: ActionSendPayment},
		},
		{
			name:    "trailing punctuation kept",
			message: "send 5 to Bob!",
			want:    Intent{Action: ActionSendPayment, Amount: floatPtr(5), To: strPtr("Bob!")},
		},
		{
			name:    "keyword inside word",
			message: "prepay 10 for Carol",
			want:    Intent{Action: ActionSendPayment, Amount: floatPtr(10), To: strPtr("Carol")},
		},
		{
			name:    "payment branch wins over balance",
			message: "send my balance to Dan",
			want:    Intent{Action: ActionSendPayment, To: strPtr("Dan")},
		},
		{
			name:    "balance",
			message: "What's my BALANCE?",
			want:    Intent{Action: ActionCheckBalance},
		},
		{
			name:    "unknown",
			message: "hello there",
			want:    Intent{Action: ActionUnknown},
		},
		{
			name:    "empty",
			message: "",
			want:    Intent{Action: ActionUnknown},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseSimple(tc.message)
			if got.Action != tc.want.Action {
				t.Fatalf("action: got %s want %s", got.Action, tc.want.Action)
			}
			if !equalFloat(got.Amount, tc.want.Amount) {
				t.Fatalf("amount: got %v want %v", deref(got.Amount), deref(tc.want.Amount))
			}
			if !equalString(got.To, tc.want.To) {
				t.Fatalf("to: got %v want %v", got.To, tc.want.To)
			}
		})
	}
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
