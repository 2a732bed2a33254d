package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionsSorted(t *testing.T) {
	t.Parallel()

	v, err := Versions()
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_events", "000002_registrations", "000003_admins"}, v)
}
