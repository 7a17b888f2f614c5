package ports_test

import (
	"testing"

	mocks "github.com/fixify/ui-core/internal/mocks/auth"
	"github.com/fixify/ui-core/internal/ports"
)

// This test only verifies that our test doubles conform to the ports at
// compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.IdentityProvider = (*mocks.MockIdentityProvider)(nil)
	var _ ports.ProfileStore = (*mocks.MockProfileStore)(nil)
	var _ ports.SessionMarker = (*mocks.MemoryMarker)(nil)
	var _ ports.AuthEvents = (*mocks.ScriptedAuthEvents)(nil)
	var _ ports.Visibility = (*mocks.ManualVisibility)(nil)
}
