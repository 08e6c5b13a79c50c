package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/campushq/backoffice/core/group"
	"github.com/campushq/backoffice/core/user"
)

func Test_groupApi_crud(t *testing.T) {
	resetDB(t)

	admin := adminUser(t)
	adminToken := getToken(t, admin)
	student := createUser(t, "Student", "studnt", "studnt@test.cd", "", []string{user.RoleStudent}, true)
	cp := createCampus(t, "Main", "Kinshasa")

	var created group.Group
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, group.NewGroup{Name: "CS-1A", CampusID: cp.ID, Program: "Computer Science", CohortYear: 2026})
		req, rec := newAuthRequest(http.MethodPost, "/v1/groups", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d; body = %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if created.ID == "" || created.Name != "CS-1A" || created.CohortYear != 2026 || !created.IsActive {
			t.Errorf("created = %+v", created)
		}
	})

	t.Run("create requires admin", func(t *testing.T) {
		body := marchallObj(t, group.NewGroup{Name: "CS-1B", CampusID: cp.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/groups", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{name: "student", wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("campus_id must be a uuid", func(t *testing.T) {
		body := marchallObj(t, group.NewGroup{Name: "CS-1B", CampusID: "nope"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/groups", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d; body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("any authed user can list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/groups", getToken(t, student))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{name: "list", wantData: marchallList(t, created)}, rec)
	})

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/groups/"+created.ID, adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{name: "get", wantData: marchallObj(t, created)}, rec)
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, group.UpdateGroup{Name: "CS-1A bis", IsActive: boolPtr(false)})
		req, rec := newAuthRequest(http.MethodPut, "/v1/groups/"+created.ID, adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; body = %s", rec.Code, rec.Body.String())
		}
		var updated group.Group
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if updated.Name != "CS-1A bis" || updated.IsActive {
			t.Errorf("updated = %+v", updated)
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/groups/"+created.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %d; body = %s", rec.Code, rec.Body.String())
		}
		req, rec = newAuthRequest(http.MethodGet, "/v1/groups/"+created.ID, adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{name: "gone", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "group not found"})}, rec)
	})
}
