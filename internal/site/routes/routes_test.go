package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "civicfund/pkg/domain"
)

func TestRouteMapIsUnique(t *testing.T) {
	paths := map[string]bool{}
	names := map[string]bool{}
	for _, r := range All() {
		assert.False(t, paths[r.Path], "duplicate path %s", r.Path)
		assert.False(t, names[r.Name], "duplicate name %s", r.Name)
		paths[r.Path] = true
		names[r.Name] = true
		if r.Indexed {
			assert.True(t, r.Public(), "%s is indexed but gated", r.Path)
			assert.False(t, r.Parameterized(), "%s is indexed but parameterized", r.Path)
		}
	}
}

func TestGrouped(t *testing.T) {
	g := Grouped()
	assert.Len(t, g[SectionMarketing], 11)
	assert.Len(t, g[SectionDonor], 4)
	assert.Len(t, g[SectionDashboard], 4)
	assert.Len(t, g[SectionAdmin], 5)
	for _, r := range g[SectionAdmin] {
		assert.Equal(t, id.RoleAdmin, r.Role)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		path string
		name string
		ok   bool
	}{
		{"/", "home", true},
		{"/campaigns/", "campaigns", true},
		{"/campaigns/clinic-fund", "campaign", true},
		{"/donate/1234", "donate", true},
		{"/admin/registrations", "admin-registrations", true},
		{"/campaigns/a/b", "", false},
		{"/nope", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, ok := Match(tt.path)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, r.Name)
		})
	}
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/blog/hello-world", Path("blog-post", "hello-world"))
	assert.Equal(t, "/faq", Path("faq"))
	assert.Equal(t, "/", Path("missing"))
}

func TestAllReturnsCopy(t *testing.T) {
	a := All()
	a[0].Path = "/changed"
	assert.Equal(t, "/", All()[0].Path)
}
