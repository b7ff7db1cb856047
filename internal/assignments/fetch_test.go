package assignments

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloneAuthCarriesProviderToken(t *testing.T) {
	auth := cloneAuth("secret-token")
	require.NotNil(t, auth, "a configured token must authenticate the clone")
	require.Equal(t, "secret-token", auth.Password)
	require.NotEmpty(t, auth.Username, "basic auth requires a non-empty username")
}

func TestCloneAuthOmittedWithoutToken(t *testing.T) {
	require.Nil(t, cloneAuth(""))
}
