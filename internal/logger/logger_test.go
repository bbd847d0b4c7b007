package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&buf, tt.verbose)

			l.Debug("assembled prompt", "persona", "kanye")
			l.Info("server listening", "addr", ":5001")

			out := buf.String()
			assert.Contains(t, out, "server listening")
			assert.Contains(t, out, "addr=:5001")
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("persona=kanye")))
		})
	}
}
