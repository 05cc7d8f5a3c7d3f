package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_PaymentAttemptNote(t *testing.T) {
	note := "**Payment Attempt**\nCustomer Notice: Insufficient funds\nAdditionally: Logged"

	out, err := NewRenderer().ToHTML(note)
	require.NoError(t, err)

	assert.Contains(t, out, "<strong>Payment Attempt</strong>")
	assert.Contains(t, out, "<br")
	assert.Contains(t, out, "Customer Notice: Insufficient funds")
}

func TestRenderer_StripsScripts(t *testing.T) {
	out, err := NewRenderer().ToHTML("Refund note <script>alert(1)</script>")
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "Refund note")
}
