package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_userApi_register(t *testing.T) {
	app, repos := setup(t)

	testutil.CreateUser(t, repos.usr, "Taken", "taken@test.cd", "", user.RoleStudent, true)

	tests := []httpTest{
		{
			name: "empty body", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			extra:    []string{"full_name", "email", "password"},
		},
		{
			name: "short password", body: []byte(`{"full_name":"New Guy","email":"new@test.cd","password":"short"}`),
			wantCode: http.StatusBadRequest,
			extra:    []string{"password"},
		},
		{
			name: "duplicate email", body: []byte(`{"full_name":"New Guy","email":"taken@test.cd","password":"v3rys3cret"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "ok", body: []byte(`{"full_name":"New Guy","email":"new@test.cd","password":"v3rys3cret"}`),
			wantCode: http.StatusCreated,
		},
		{
			// submitted role is ignored; public registration always yields a student
			name: "role field ignored", body: []byte(`{"full_name":"Sneaky","email":"sneaky@test.cd","password":"v3rys3cret","role":"admin"}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/register", tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusCreated {
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("unmarshalling user: %v", err)
				}
				if usr.Role != user.RoleStudent {
					t.Errorf("role = %v; want %v", usr.Role, user.RoleStudent)
				}
			}
			if flds, ok := tt.extra.([]string); ok {
				var fldErrs map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &fldErrs); err != nil {
					t.Fatalf("unmarshalling field errors: %v", err)
				}
				for _, fld := range flds {
					if _, ok := fldErrs[fld]; !ok {
						t.Errorf("missing field error for %q in %v", fld, fldErrs)
					}
				}
			}
		})
	}
}

func Test_userApi_login(t *testing.T) {
	app, repos := setup(t)

	testutil.CreateUser(t, repos.usr, "Active Guy", "guy@test.cd", "v3rys3cret", user.RoleStudent, true)
	testutil.CreateUser(t, repos.usr, "Lazy Guy", "lazy@test.cd", "v3rys3cret", user.RoleStudent, false)

	tests := []httpTest{
		{name: "empty body", body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{
			name: "unknown email", body: []byte(`{"email":"who@test.cd","password":"v3rys3cret"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: []byte(`{"email":"guy@test.cd","password":"nope nope"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: []byte(`{"email":"lazy@test.cd","password":"v3rys3cret"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "ok", body: []byte(`{"email":"guy@test.cd","password":"v3rys3cret"}`), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/login", tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if tt.wantCode == http.StatusOK {
				var res struct {
					Message string `json:"message"`
					Access  string `json:"access"`
					Refresh string `json:"refresh"`
					User    struct {
						Email    string `json:"email"`
						FullName string `json:"full_name"`
						Role     string `json:"role"`
					} `json:"user"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatalf("unmarshalling login response: %v", err)
				}
				if res.Access == "" || res.Refresh == "" {
					t.Error("expected a token pair")
				}
				if res.User.Email != "guy@test.cd" || res.User.Role != "student" {
					t.Errorf("unexpected user payload: %+v", res.User)
				}
			}
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	app, repos := setup(t)

	usr := testutil.CreateUser(t, repos.usr, "Guy", "guy@test.cd", "v3rys3cret", user.RoleStudent, true)
	lazy := testutil.CreateUser(t, repos.usr, "Lazy", "lazy@test.cd", "v3rys3cret", user.RoleStudent, false)

	tests := []httpTest{
		{name: "empty body", body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{
			name: "access token rejected", body: marchallObj(t, map[string]string{"refresh": getToken(t, usr)}),
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "garbage token", body: []byte(`{"refresh":"not.a.token"}`),
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "deactivated account", body: marchallObj(t, map[string]string{"refresh": getRefreshToken(t, lazy)}),
			wantCode: http.StatusForbidden,
		},
		{
			name: "ok", body: marchallObj(t, map[string]string{"refresh": getRefreshToken(t, usr)}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/token-refresh", tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusOK {
				var res struct {
					Access  string `json:"access"`
					Refresh string `json:"refresh"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatalf("unmarshalling token response: %v", err)
				}
				if res.Access == "" || res.Refresh == "" {
					t.Error("expected a fresh token pair")
				}
			}
		})
	}
}

var resetTokenRegex = regexp.MustCompile(`\?token=([\w-]+:[\w-]+)`)

func Test_userApi_passwordResetFlow(t *testing.T) {
	app, repos := setup(t)
	emailsvc.ClearSentMessages()

	testutil.CreateUser(t, repos.usr, "Guy", "guy@test.cd", "0lds3cret", user.RoleStudent, true)

	genericMsg := "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."

	// forgot-password responds identically for unknown emails
	req, rec := newRequest(http.MethodPost, "/v1/password/forgot", []byte(`{"email":"who@test.cd"}`))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"message": genericMsg})}, rec)
	if len(emailsvc.SentMessages) != 0 {
		t.Fatalf("expected no mail for unknown email; got %d", len(emailsvc.SentMessages))
	}

	// known email gets the same response plus a reset mail
	req, rec = newRequest(http.MethodPost, "/v1/password/forgot", []byte(`{"email":"guy@test.cd"}`))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"message": genericMsg})}, rec)
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("expected 1 reset mail; got %d", len(emailsvc.SentMessages))
	}

	match := resetTokenRegex.FindStringSubmatch(emailsvc.SentMessages[0].TextContent)
	if match == nil {
		t.Fatalf("reset link not found in mail: %s", emailsvc.SentMessages[0].TextContent)
	}
	token := match[1]

	// bad token is collapsed into one generic denial
	req, rec = newRequest(http.MethodPost, "/v1/password/reset", []byte(`{"token":"lol:lol","new_password":"n3ws3cret"}`))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid or expired reset link"})}, rec)

	// consume the real token
	req, rec = newRequest(http.MethodPost, "/v1/password/reset", marchallObj(t, map[string]string{"token": token, "new_password": "n3ws3cret"}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"message": "Password has been reset with the new password."})}, rec)

	// token is single-use; password change invalidates it
	req, rec = newRequest(http.MethodPost, "/v1/password/reset", marchallObj(t, map[string]string{"token": token, "new_password": "other s3cret"}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid or expired reset link"})}, rec)

	// the new password logs in
	req, rec = newRequest(http.MethodPost, "/v1/login", []byte(`{"email":"guy@test.cd","password":"n3ws3cret"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password: code = %v; body %s", rec.Code, rec.Body.String())
	}
}

func Test_userApi_profile(t *testing.T) {
	app, repos := setup(t)

	usr := testutil.CreateUser(t, repos.usr, "Guy", "guy@test.cd", "v3rys3cret", user.RoleStudent, true)
	token := getToken(t, usr)

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodGet,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "get own profile", method: http.MethodGet, token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, usr),
		},
		{
			name: "update full name", method: http.MethodPut, token: token,
			body:     []byte(`{"full_name":"New Name"}`),
			wantCode: http.StatusOK,
		},
		{
			// empty name means "keep the current one"
			name: "empty name keeps current", method: http.MethodPut, token: token,
			body:     []byte(`{"full_name":""}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, "/v1/profile", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.name == "update full name" {
				got, err := repos.usr.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID(): %v", err)
				}
				if got.FullName != "New Name" {
					t.Errorf("full name = %q; want %q", got.FullName, "New Name")
				}
			}
		})
	}
}

func Test_userApi_userQuery(t *testing.T) {
	app, repos := setup(t)

	student := testutil.CreateUser(t, repos.usr, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	teacher := testutil.CreateUser(t, repos.usr, "Teacher", "teacher@test.cd", "", user.RoleInstructor, true)
	admin := testutil.CreateUser(t, repos.usr, "Admin", "admin@test.cd", "", user.RoleAdmin, true)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "instructor denied too", token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			// newest first
			name: "get all", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, admin, teacher, student),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_createStaff(t *testing.T) {
	app, repos := setup(t)

	admin := testutil.CreateUser(t, repos.usr, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	student := testutil.CreateUser(t, repos.usr, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "auth required", body: []byte(`{}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", token: getToken(t, student), body: []byte(`{}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "student role rejected", token: adminToken,
			body:     []byte(`{"full_name":"Sneaky","email":"sneaky@test.cd","password":"v3rys3cret","role":"student"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "duplicate email", token: adminToken,
			body:     []byte(`{"full_name":"Hero Again","email":"hero@test.cd","password":"v3rys3cret"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "defaults to instructor", token: adminToken,
			body:     []byte(`{"full_name":"Teach","email":"teach@test.cd","password":"v3rys3cret"}`),
			wantCode: http.StatusCreated, extra: user.RoleInstructor,
		},
		{
			name: "admin role allowed", token: adminToken,
			body:     []byte(`{"full_name":"Boss","email":"boss@test.cd","password":"v3rys3cret","role":"admin"}`),
			wantCode: http.StatusCreated, extra: user.RoleAdmin,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/admin/create-instructor", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if wantRole, ok := tt.extra.(user.Role); ok {
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("unmarshalling user: %v", err)
				}
				if usr.Role != wantRole {
					t.Errorf("role = %v; want %v", usr.Role, wantRole)
				}
				if !usr.IsStaff {
					t.Error("expected a staff user")
				}
			}
		})
	}
}
