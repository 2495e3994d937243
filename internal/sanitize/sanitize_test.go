package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"trims whitespace", "  hello \n", "hello"},
		{"strips tags", "<b>hello</b>", "hello"},
		{"drops script content", `<script>alert("x")</script>hi`, "hi"},
		{"keeps entities readable", "fish & chips", "fish & chips"},
		{"nested markup", `<a href="http://evil">click<img src=x onerror=alert(1)></a>`, "click"},
		{"only markup", "<br/>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Text(tt.in))
		})
	}
}
