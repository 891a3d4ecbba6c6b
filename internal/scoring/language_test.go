package scoring

import (
	"reflect"
	"testing"
)

func TestIsTargetLanguage(t *testing.T) {
	d := NewEnglishDetector()

	cases := []struct {
		text string
		want bool
	}{
		{"The food here is consistently excellent and the service is quick", true},
		{"La comida es deliciosa y el servicio excelente, volveremos pronto", false},
		{"Le personnel était charmant et les plats vraiment délicieux", false},
		{"Das Essen war hervorragend und der Service sehr freundlich", false},
		{"", false},
		{"   \t  ", false},
	}
	for _, tc := range cases {
		if got := d.IsTargetLanguage(tc.text); got != tc.want {
			t.Errorf("IsTargetLanguage(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

// acceptAll passes everything through so FilterReviews' blank handling can be
// tested in isolation from the classifier.
type acceptAll struct{}

func (acceptAll) IsTargetLanguage(string) bool { return true }

func TestFilterReviews_DropsBlanks(t *testing.T) {
	got := FilterReviews(acceptAll{}, []string{"Great place!", "", "Bad service"})
	want := []string{"Great place!", "Bad service"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FilterReviews = %v, want %v", got, want)
	}
}

func TestFilterReviews_DropsNonTarget(t *testing.T) {
	d := NewEnglishDetector()
	got := FilterReviews(d, []string{
		"Wonderful dinner, the steak was cooked perfectly",
		"La comida es deliciosa y el servicio excelente, volveremos pronto",
		"  ",
		"Friendly staff and generous portions, highly recommended",
	})
	want := []string{
		"Wonderful dinner, the steak was cooked perfectly",
		"Friendly staff and generous portions, highly recommended",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FilterReviews = %v, want %v", got, want)
	}
}

func TestFilterReviews_EmptyInput(t *testing.T) {
	if got := FilterReviews(acceptAll{}, nil); len(got) != 0 {
		t.Fatalf("FilterReviews(nil) = %v, want empty", got)
	}
}
