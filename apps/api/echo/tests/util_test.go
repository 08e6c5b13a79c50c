package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/campushq/backoffice/apps/api/echo"
	"github.com/campushq/backoffice/core/campus"
	"github.com/campushq/backoffice/core/group"
	"github.com/campushq/backoffice/core/schedule"
	"github.com/campushq/backoffice/core/user"
	testutil "github.com/campushq/backoffice/tests"
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("%s: code = %d, want %d; body = %s", tt.name, rec.Code, wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	eq, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Fatalf("%s: jsonBytesEqual() failed: %v", tt.name, err)
	}
	if !eq {
		t.Errorf("%s: body = %s, want %s", tt.name, rec.Body.String(), tt.wantData)
	}
}

func resetDB(t *testing.T) {
	t.Helper()
	db.Reset()
}

func createUser(t *testing.T, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	t.Helper()
	return testutil.CreateUser(t, usrRepo, name, uname, email, pwd, roles, isActive)
}

func adminUser(t *testing.T) user.User {
	t.Helper()
	return createUser(t, "Admin", "admin", "admin@test.cd", "secret", []string{user.RoleAdmin}, true)
}

func createCampus(t *testing.T, name, city string) campus.Campus {
	t.Helper()
	return testutil.CreateCampus(t, campusRepo, name, city)
}

func createClassroom(t *testing.T, campusID, name string, capacity int, isUniversal bool) campus.Classroom {
	t.Helper()
	return testutil.CreateClassroom(t, campusRepo, campusID, name, capacity, isUniversal)
}

func createGroup(t *testing.T, name, campusID string) group.Group {
	t.Helper()
	return testutil.CreateGroup(t, groupRepo, name, campusID)
}

func createEvent(t *testing.T, title string, start, end time.Time, groupID, teacherID, classroomID string) schedule.Event {
	t.Helper()
	return testutil.CreateEvent(t, schedRepo, title, start, end, groupID, teacherID, classroomID)
}
