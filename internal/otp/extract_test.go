package otp

import "testing"

func TestExtractSixDigitCode(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"plain code", "Your verification code is 482910.", "482910"},
		{"code with punctuation", "Enter the code: 123456!", "123456"},
		{"spaced digits", "Your code is 1 2 3 4 5 6 now", "123456"},
		{"non-breaking spaces", "code 1\u00a02\u00a03\u00a04\u00a05\u00a06", "123456"},
		{"eight digit run rejected", "Order #12345678 placed", ""},
		{"seven digit run rejected", "call 5551234567 for help", ""},
		{"phone number plus code", "From +15551234567: your code is 662001", "662001"},
		{"no digits", "no timestamp here", ""},
		{"five digits only", "code 12345", ""},
		{"html artifacts", "<b>90</b><b>12</b><b>34</b>", "901234"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractSixDigitCode(tc.text)
			if got != tc.want {
				t.Errorf("ExtractSixDigitCode(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractSixDigitCodeIdempotent(t *testing.T) {
	inputs := []string{
		"Your code is 1 2 3 4 5 6 now",
		"Order #12345678 placed",
		"code 482910 and 573821",
	}
	for _, in := range inputs {
		first := ExtractSixDigitCode(in)
		second := ExtractSixDigitCode(in)
		if first != second {
			t.Errorf("ExtractSixDigitCode(%q) not idempotent: %q then %q", in, first, second)
		}
		if first != "" && len(first) != 6 {
			t.Errorf("ExtractSixDigitCode(%q) = %q, want exactly 6 digits", in, first)
		}
	}
}
