package thumbnail

import "testing"

func TestCurrentImage(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   string
	}{
		{name: "nil result", result: nil, want: ""},
		{name: "base only", result: &Result{BaseImage: "base"}, want: "base"},
		{name: "refined wins", result: &Result{BaseImage: "base", RefinedImage: "refined"}, want: "refined"},
		{name: "blank refined ignored", result: &Result{BaseImage: "base", RefinedImage: "  "}, want: "base"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.CurrentImage(); got != tt.want {
				t.Fatalf("CurrentImage = %q, want %q", got, tt.want)
			}
		})
	}
}
