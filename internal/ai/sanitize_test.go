package ai

import "testing"

func TestSanitize_ReferenceExample(t *testing.T) {
	in := "It's difficult to determine the exact calorie count of this meal. However, it looks healthy."
	want := "of this meal.  it looks healthy."

	if got := Sanitize(in); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSanitize_Cases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "1. Rice - 200 calories", "1. Rice - 200 calories"},
		{"trims whitespace", "\n  Total: 500 calories \n", "Total: 500 calories"},
		{
			"removes every occurrence",
			"However, a. However, b.",
			"a.  b.",
		},
		{
			"case sensitive",
			"however, it's difficult to determine the exact calorie count",
			"however, it's difficult to determine the exact calorie count",
		},
		{
			"all phrases",
			"X without knowing the specific ingredients and quantities used Y " +
				"A calorie counter would need to know the specific ingredients Z " +
				"accurately calculate the calories W",
			"X  Y  Z  W",
		},
		{"empty", "", ""},
		{"only boilerplate", "  However,  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"It's difficult to determine the exact calorie count of this meal. However, it looks healthy.",
		"1. Salad - 150 calories\n2. Bread - 120 calories\nTotal: 270 calories",
		"  However, nothing else  ",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}
