package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresClassroomCode(t *testing.T) {
	t.Setenv("CLASSBOARD_CLASSROOM_CODE", "")
	t.Setenv("CLASSBOARD_BACKEND_HTTP_BASE", "https://backend.example.com/api")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadNormalizesBaseURLs(t *testing.T) {
	t.Setenv("CLASSBOARD_CLASSROOM_CODE", "abc")
	t.Setenv("CLASSBOARD_BACKEND_HTTP_BASE", "https://backend.example.com/api")
	t.Setenv("CLASSBOARD_BACKEND_WS_BASE", "wss://backend.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://backend.example.com/api/", cfg.BackendHTTPBase)
	require.Equal(t, "wss://backend.example.com/", cfg.BackendWSBase)
	require.Equal(t, "Classboard", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
}

func TestLoadParsesSnapshotInterval(t *testing.T) {
	t.Setenv("CLASSBOARD_CLASSROOM_CODE", "abc")
	t.Setenv("CLASSBOARD_BACKEND_HTTP_BASE", "https://backend.example.com/api")
	t.Setenv("CLASSBOARD_SNAPSHOT_INTERVAL", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "1m30s", cfg.SnapshotInterval.String())
}

func TestLoadRejectsBadInterval(t *testing.T) {
	t.Setenv("CLASSBOARD_CLASSROOM_CODE", "abc")
	t.Setenv("CLASSBOARD_BACKEND_HTTP_BASE", "https://backend.example.com/api")
	t.Setenv("CLASSBOARD_SNAPSHOT_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestHTTPAddressKeepsLeadingColon(t *testing.T) {
	cfg := Config{AppPort: ":9000"}
	require.Equal(t, ":9000", cfg.HTTPAddress())
}
