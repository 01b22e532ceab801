package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("rest driver needs url and key", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "rest")
		t.Setenv("SUPABASE_URL", "")
		t.Setenv("SUPABASE_ANON_KEY", "")

		_, err := Load()
		assert.ErrorContains(t, err, "SUPABASE_URL")
	})

	t.Run("rest driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "rest")
		t.Setenv("SUPABASE_URL", "https://example.supabase.co")
		t.Setenv("SUPABASE_ANON_KEY", "anon")
		t.Setenv("APP_URL", "https://example.com/")
		t.Setenv("CACHE_TTL", "30s")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, "https://example.com", cfg.AppURL)
		assert.Equal(t, 30*time.Second, cfg.CacheTTL)
		assert.True(t, cfg.AuthEnabled())
		assert.False(t, cfg.ContactPersist)
	})

	t.Run("sqlite driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "sqlite")
		t.Setenv("SUPABASE_URL", "")
		t.Setenv("SUPABASE_ANON_KEY", "")
		t.Setenv("CONTACT_PERSIST", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "./data/site.db", cfg.SQLitePath)
		assert.False(t, cfg.AuthEnabled())
		assert.True(t, cfg.ContactPersist)
	})

	t.Run("bad values", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "sqlite")
		t.Setenv("CONTACT_PERSIST", "maybe")
		_, err := Load()
		assert.ErrorContains(t, err, "CONTACT_PERSIST")

		t.Setenv("CONTACT_PERSIST", "")
		t.Setenv("CACHE_TTL", "soon")
		_, err = Load()
		assert.ErrorContains(t, err, "CACHE_TTL")

		t.Setenv("CACHE_TTL", "")
		t.Setenv("STORE_DRIVER", "mongo")
		_, err = Load()
		assert.ErrorContains(t, err, "unknown STORE_DRIVER")
	})

	t.Run("admin emails", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "sqlite")
		t.Setenv("ADMIN_EMAILS", " Owner@Example.com, ,ops@example.com ")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"owner@example.com", "ops@example.com"}, cfg.AdminEmails)
		assert.True(t, cfg.IsAdminEmail("OWNER@example.com"))
		assert.False(t, cfg.IsAdminEmail("someone@example.com"))
		assert.False(t, cfg.IsAdminEmail(""))
	})

	t.Run("watch needs content dir", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "sqlite")
		t.Setenv("WATCH_CONTENT", "true")
		t.Setenv("CONTENT_DIR", "")
		_, err := Load()
		assert.ErrorContains(t, err, "CONTENT_DIR")
	})
}

func TestDefaultFacets(t *testing.T) {
	table := DefaultFacets()

	articles := table.For("articles")
	require.Len(t, articles, 1)
	assert.Equal(t, "category", articles[0].Name)
	assert.Equal(t, []string{"All", "AI in Learning", "Instructional Design", "Case Studies", "Best Practices"}, articles[0].Options())

	projects := table.For("projects")
	require.Len(t, projects, 2)
	assert.Equal(t, "domain", projects[0].Name)
	assert.Equal(t, "tool", projects[1].Name)

	resources := table.For("resources")
	require.Len(t, resources, 2)
	assert.Contains(t, resources[0].Values, "Webinar")

	assert.Empty(t, table.For("unknown"))
}

func TestLoadFacetsTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facets.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[articles]]
name = "category"
label = "Category"
values = ["Go", "Rust"]
`), 0644))

	table, err := LoadFacets(path)
	require.NoError(t, err)
	require.Len(t, table.For("articles"), 1)
	assert.Equal(t, []string{"Go", "Rust"}, table.For("articles")[0].Values)
}

func TestParseFacetsRejects(t *testing.T) {
	_, err := ParseFacets([]byte("articles:\n  - label: no name\n"), "yaml")
	assert.Error(t, err)

	_, err = ParseFacets([]byte("articles:\n  - name: a\n  - name: a\n"), "yaml")
	assert.ErrorContains(t, err, "duplicate")

	_, err = ParseFacets([]byte("articles:\n  - name: a\n    values: [All]\n"), "yaml")
	assert.ErrorContains(t, err, "reserved")

	_, err = ParseFacets([]byte("{}"), "json")
	assert.Error(t, err)
}
