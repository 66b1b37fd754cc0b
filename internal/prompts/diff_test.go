package prompts

import "testing"

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
		want string
	}{
		{
			name: "single line change",
			old:  "You are an assistant.",
			new:  "You are a specialist.",
			want: "- You are an assistant.\n+ You are a specialist.",
		},
		{
			name: "identical",
			old:  "a\nb\nc",
			new:  "a\nb\nc",
			want: NoChanges,
		},
		{
			name: "both empty",
			old:  "",
			new:  "",
			want: NoChanges,
		},
		{
			name: "from empty",
			old:  "",
			new:  "a\nb",
			want: "+ a\n+ b",
		},
		{
			name: "to empty",
			old:  "a\nb",
			new:  "",
			want: "- a\n- b",
		},
		{
			name: "appended line",
			old:  "a\nb",
			new:  "a\nb\nc",
			want: "+ c",
		},
		{
			name: "removed trailing line",
			old:  "a\nb\nc",
			new:  "a\nb",
			want: "- c",
		},
		{
			name: "middle edit only",
			old:  "a\nb\nc",
			new:  "a\nB\nc",
			want: "- b\n+ B",
		},
		{
			name: "insertion cascades",
			old:  "a\nb\nc",
			new:  "x\na\nb\nc",
			want: "- a\n+ x\n- b\n+ a\n- c\n+ b\n+ c",
		},
		{
			name: "trailing newline is a line",
			old:  "a",
			new:  "a\n",
			want: "+ ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if got != tt.want {
				t.Errorf("Diff() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestDiff_Deterministic(t *testing.T) {
	a := "line one\nline two\nline three"
	b := "line one\nline 2\nline three\nline four"

	first := Diff(a, b)
	for i := 0; i < 10; i++ {
		if got := Diff(a, b); got != first {
			t.Fatalf("Diff() not deterministic: %q != %q", got, first)
		}
	}
	if Diff(a, a) != NoChanges {
		t.Errorf("Diff(a, a) = %q, want %q", Diff(a, a), NoChanges)
	}
}
