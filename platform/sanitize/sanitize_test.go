package sanitize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStripHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "<b>Call</b> back", want: "Call back"},
		{in: "&lt;script&gt;alert(1)&lt;/script&gt;ok", want: "alert(1)ok"},
		{in: "  plain  ", want: "plain"},
	}

	for _, tc := range cases {
		if got := StripHTML(tc.in); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestLineCollapsesWhitespace(t *testing.T) {
	if got := Line(" Acme \n  Corp\t"); got != "Acme Corp" {
		t.Fatalf("expected %q, got %q", "Acme Corp", got)
	}
}

func TestTags(t *testing.T) {
	got := Tags([]string{"saas", " SaaS ", "", "<i>enterprise</i>", "q3"})
	want := []string{"saas", "enterprise", "q3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected tags (-want +got):\n%s", diff)
	}
}
