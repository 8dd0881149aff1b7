package rank

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text  string
		class string
		want  int
	}{
		{text: "Healthy Eating Advisory Service", want: Winner},
		{text: "", class: "", want: Winner},
		{text: "Finalist (Silver)", want: Silver},
		{text: "Runner-up", want: Silver},
		{text: "awarded 2nd", want: Silver},
		{text: "Cooee", class: "entry finalist", want: Silver},
		{text: "Bronze medal, 3rd place", want: Bronze},
		{text: "Third place overall", want: Bronze},
		{text: "Silver and Bronze", want: Bronze},
		{text: "National Gallery", class: "award-bronze", want: Bronze},
	}

	for _, tc := range tests {
		if got := Classify(tc.text, tc.class); got != tc.want {
			t.Errorf("Classify(%q, %q) = %d, want %d", tc.text, tc.class, got, tc.want)
		}
	}
}

func TestLabel(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		Winner: "🏆 Winner",
		Silver: "🥈 Silver",
		Bronze: "🥉 Bronze",
		7:      "Finalist",
	}
	for rank, want := range cases {
		if got := Label(rank); got != want {
			t.Errorf("Label(%d) = %q, want %q", rank, got, want)
		}
	}
}
