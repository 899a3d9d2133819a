package portalcli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ldsaas/portal/internal/invite"
)

func TestExecuteUnknownCommandIsUsageError(t *testing.T) {
	require.ErrorIs(t, Execute([]string{"bogus"}), ErrUsage)
	require.ErrorIs(t, Execute(nil), ErrUsage)
}

func TestSetupWritesEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	err := Execute([]string{"setup", "--api-base-url", "https://api.example.com", "--env-file", path})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "PORTAL_API_BASE_URL=https://api.example.com")
	require.Contains(t, string(data), "PORTAL_PORT=8080")
}

func TestSetupRefusesToOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("X=1\n"), 0o600))

	err := Execute([]string{"setup", "--api-base-url", "https://api.example.com", "--env-file", path})
	require.Error(t, err)

	err = Execute([]string{"setup", "--api-base-url", "https://api.example.com", "--env-file", path, "--force"})
	require.NoError(t, err)
}

func TestSetupRequiresBaseURL(t *testing.T) {
	require.Error(t, Execute([]string{"setup"}))
}

func TestTemplateWritesParsableWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, Execute([]string{"template", "--out", path}))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	recipients, err := invite.ParseRecipients(file, path)
	require.NoError(t, err)
	require.NotEmpty(t, recipients)
}
