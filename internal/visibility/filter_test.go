package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/lateral-entry-be/internal/models"
)

var (
	anonymous = Viewer{}
	appointee = Viewer{Role: models.RoleAppointee}
	admin     = Viewer{Role: models.RoleAdmin}
	owner     = Viewer{Role: models.RoleAppointee, Owner: true}
)

func sampleFields() map[string]any {
	return map[string]any{
		"id":        int64(1),
		"name":      "Asha Rao",
		"photo_url": "/uploads/images/a.png",
		"bio":       "Economist",
		"phone":     "+91 99999",
		"email":     "asha@example.org",
		"ministry":  "Finance",
	}
}

func TestFilterIsPureAndDeterministic(t *testing.T) {
	fields := sampleFields()
	settings := map[string]Level{"bio": Private, "phone": Restricted}

	first := Filter(fields, settings, anonymous)
	second := Filter(fields, settings, anonymous)
	assert.Equal(t, first, second)
	assert.Equal(t, sampleFields(), fields)
}

func TestAnchorsAlwaysVisible(t *testing.T) {
	settings := map[string]Level{"id": Private, "name": Private, "photo_url": Restricted}
	for _, viewer := range []Viewer{anonymous, appointee, admin, owner} {
		out := Filter(sampleFields(), settings, viewer)
		for _, anchor := range []string{"id", "name", "photo_url"} {
			assert.NotNil(t, out[anchor], "anchor %s for %+v", anchor, viewer)
		}
	}
}

func TestPrivateVisibleToOwnerAndAdminOnly(t *testing.T) {
	settings := map[string]Level{"email": Private}
	assert.Nil(t, Filter(sampleFields(), settings, anonymous)["email"])
	assert.Nil(t, Filter(sampleFields(), settings, appointee)["email"])
	assert.Equal(t, "asha@example.org", Filter(sampleFields(), settings, owner)["email"])
	assert.Equal(t, "asha@example.org", Filter(sampleFields(), settings, admin)["email"])
}

func TestRestrictedVisibleToAppointees(t *testing.T) {
	settings := map[string]Level{"phone": Restricted}

	out := Filter(sampleFields(), settings, anonymous)
	v, present := out["phone"]
	assert.True(t, present)
	assert.Nil(t, v)

	assert.Equal(t, "+91 99999", Filter(sampleFields(), settings, appointee)["phone"])
	assert.Equal(t, "+91 99999", Filter(sampleFields(), settings, admin)["phone"])
}

func TestUnsetFieldsArePublic(t *testing.T) {
	out := Filter(sampleFields(), nil, anonymous)
	assert.Equal(t, "Finance", out["ministry"])
	assert.Len(t, out, len(sampleFields()))
}

func TestPrivateBioScenario(t *testing.T) {
	p1 := int64(10)
	u1 := &models.UserContext{UserID: 1, Role: models.RoleAppointee, EntrantID: &p1}
	a1 := &models.UserContext{UserID: 2, Role: models.RoleAdmin}
	settings := map[string]Level{"bio": Private}

	assert.Nil(t, Filter(sampleFields(), settings, ViewerFor(nil, p1))["bio"])
	assert.Equal(t, "Economist", Filter(sampleFields(), settings, ViewerFor(u1, p1))["bio"])
	assert.Equal(t, "Economist", Filter(sampleFields(), settings, ViewerFor(a1, p1))["bio"])
}

func TestParseLevelAndEffective(t *testing.T) {
	_, err := ParseLevel("friends")
	assert.Error(t, err)

	level, err := ParseLevel("lateral_entrants_only")
	require.NoError(t, err)
	assert.Equal(t, Restricted, level)

	eff := Effective(map[string]string{"bio": "private", "phone": "bogus"})
	require.Len(t, eff, len(models.EditableFields))
	byName := map[string]string{}
	for _, fv := range eff {
		byName[fv.FieldName] = fv.VisibilityLevel
	}
	assert.Equal(t, "private", byName["bio"])
	assert.Equal(t, "private", byName["phone"])
	assert.Equal(t, "public", byName["ministry"])
}
