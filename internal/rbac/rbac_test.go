package rbac

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"ADMIN", RoleAdmin, true},
		{"admin", RoleAdmin, true},
		{" Owner ", RoleOwner, true},
		{"customer", RoleCustomer, true},
		{"", "", false},
		{"root", "", false},
		{"ADMINISTRATOR", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestCan_Matrix(t *testing.T) {
	all := []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

	// role -> resource -> allowed actions; everything else must be denied.
	expect := map[string]map[Resource][]Action{
		"ADMIN": {
			ResourceUsers: all,
			ResourceAdmin: all,
			ResourceFiles: all,
		},
		"OWNER": {
			ResourceUsers: {ActionCreate, ActionRead, ActionUpdate},
			ResourceAdmin: {},
			ResourceFiles: {ActionCreate, ActionRead},
		},
		"CUSTOMER": {
			ResourceUsers: {ActionRead},
			ResourceAdmin: {},
			ResourceFiles: {ActionCreate, ActionRead},
		},
	}

	for role, resources := range expect {
		for resource, allowed := range resources {
			allowedSet := map[Action]bool{}
			for _, a := range allowed {
				allowedSet[a] = true
			}
			for _, action := range all {
				got := Can(role, resource, action)
				assert.Equal(t, allowedSet[action], got,
					"role=%s resource=%s action=%s", role, resource, action)
			}
		}
	}
}

func TestCan_UnknownRole(t *testing.T) {
	for _, role := range []string{"", "guest", "SUPERADMIN", "????"} {
		for _, resource := range []Resource{ResourceUsers, ResourceAdmin, ResourceFiles} {
			for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
				assert.False(t, Can(role, resource, action),
					"role=%q resource=%s action=%s", role, resource, action)
			}
		}
	}
}

func TestRequirePermission_Denied(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ok := RequirePermission(c, "OWNER", ResourceAdmin, ActionRead)
	assert.False(t, ok)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Access denied: insufficient permissions.", body["message"])
}

func TestRequirePermission_Allowed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ok := RequirePermission(c, "CUSTOMER", ResourceUsers, ActionRead)
	assert.True(t, ok)
	assert.Empty(t, rec.Body.String(), "no response written on allow")
}
