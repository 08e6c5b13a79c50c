package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/campushq/backoffice/apps/api/echo"
	"github.com/campushq/backoffice/core/user"
)

func Test_userApi_login(t *testing.T) {
	resetDB(t)

	createUser(t, "User", "awe", "awe@test.cd", "LePassw0rd", nil, true)
	createUser(t, "Naughty", "ndog", "ndog@test.cd", "LePassw0rd", nil, false)

	tests := []httpTest{
		{
			name: "empty body", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: marchallObj(t, LoginRequest{Username: "lol", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, LoginRequest{Username: "awe", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, LoginRequest{Username: "ndog", Password: "LePassw0rd"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login with username", body: marchallObj(t, LoginRequest{Username: "awe", Password: "LePassw0rd"})},
		{name: "login with email", body: marchallObj(t, LoginRequest{Username: "awe@test.cd", Password: "LePassw0rd"})},
		{name: "username is case-insensitive", body: marchallObj(t, LoginRequest{Username: "AWE", Password: "LePassw0rd"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode != 0 {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("code = %d; body = %s", rec.Code, rec.Body.String())
			}
			var resp LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if resp.Token == "" {
				t.Error("expected a token")
			}
		})
	}
}

func Test_userApi_query(t *testing.T) {
	resetDB(t)

	admin := adminUser(t)
	student := createUser(t, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	teacher := createUser(t, "Teacher", "teach", "teach@test.cd", "", []string{user.RoleTeacher}, true)

	tests := []httpTest{
		{
			name: "auth required", path: "/v1/users",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "admin required", path: "/v1/users", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "get all", path: "/v1/users", token: getToken(t, admin),
			wantData: marchallList(t, admin, student, teacher),
		},
		{
			name: "filter by role", path: "/v1/users?role=teacher:", token: getToken(t, admin),
			wantData: marchallList(t, teacher),
		},
		{
			name: "search", path: "/v1/users?search=hero", token: getToken(t, admin),
			wantData: marchallList(t, student),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_create(t *testing.T) {
	resetDB(t)

	admin := adminUser(t)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name:     "admin can create",
			body:     marchallObj(t, user.NewUser{Name: "New", Username: "newguy", Email: "new@test.cd", Password: "V3ryS3cret!", PasswordConfirm: "V3ryS3cret!", Roles: []string{user.RoleStudent}}),
			token:    adminToken,
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate username",
			body:     marchallObj(t, user.NewUser{Name: "Dup", Username: "newguy", Email: "dup@test.cd", Password: "V3ryS3cret!", PasswordConfirm: "V3ryS3cret!"}),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
		{
			name:     "cannot grant a role above one's own",
			body:     marchallObj(t, user.NewUser{Name: "Sneaky", Username: "sneaky", Email: "sneaky@test.cd", Password: "V3ryS3cret!", PasswordConfirm: "V3ryS3cret!", Roles: []string{user.RoleAdminOwner}}),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_detail(t *testing.T) {
	resetDB(t)

	admin := adminUser(t)
	student := createUser(t, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)
	other := createUser(t, "Other", "other01", "other@test.cd", "", []string{user.RoleStudent}, true)

	studentToken := getToken(t, student)
	adminToken := getToken(t, admin)

	t.Run("user can retrieve self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+student.ID, studentToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{name: "self", wantData: marchallObj(t, student)}, rec)
	})

	t.Run("user cannot retrieve others", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+other.ID, studentToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{name: "other", wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("user cannot self-promote", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Roles: []string{user.RoleAdmin}})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, studentToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{name: "promote", wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("user can update own name", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Name: "Hero II"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, studentToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; body = %s", rec.Code, rec.Body.String())
		}
		var updated user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if updated.Name != "Hero II" {
			t.Errorf("Name = %s, want Hero II", updated.Name)
		}
	})

	t.Run("admin cannot delete self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{name: "suicide", wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("admin can delete others", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+other.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %d; body = %s", rec.Code, rec.Body.String())
		}
	})
}

func Test_userApi_queryRoles(t *testing.T) {
	resetDB(t)

	admin := adminUser(t)
	req, rec := newAuthRequest(http.MethodGet, "/v1/users/roles", getToken(t, admin))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{name: "roles", wantData: marchallObj(t, user.Roles)}, rec)
}
