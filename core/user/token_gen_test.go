package user

import (
	"testing"
	"time"
)

func Test_makeToken_verifyToken(t *testing.T) {
	usr := User{ID: 1, Email: "hero@test.cd", LastLogin: time.Now().AddDate(0, -1, 0)}
	if err := usr.SetPassword("LexLuthor666"); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}

	t.Run("valid token", func(t *testing.T) {
		token := makeToken(usr)
		if err := verifyToken(usr, token); err != nil {
			t.Errorf("verifyToken() failed, %v", err)
		}
	})

	t.Run("empty token", func(t *testing.T) {
		if err := verifyToken(usr, ""); err != errInvalidToken {
			t.Errorf("verifyToken() err = %v; want %v", err, errInvalidToken)
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		for _, token := range []string{"garbage", "no/base32-part", "!!!-signature"} {
			if err := verifyToken(usr, token); err != errInvalidToken {
				t.Errorf("verifyToken(%q) err = %v; want %v", token, err, errInvalidToken)
			}
		}
	})

	t.Run("tampered signature", func(t *testing.T) {
		token := makeToken(usr) + "x"
		if err := verifyToken(usr, token); err != errInvalidToken {
			t.Errorf("verifyToken() err = %v; want %v", err, errInvalidToken)
		}
	})

	t.Run("token for another user", func(t *testing.T) {
		other := usr
		other.ID = 2
		token := makeToken(other)
		if err := verifyToken(usr, token); err != errInvalidToken {
			t.Errorf("verifyToken() err = %v; want %v", err, errInvalidToken)
		}
	})

	t.Run("invalidated by password change", func(t *testing.T) {
		token := makeToken(usr)

		changed := usr
		if err := changed.SetPassword("NewPassword123"); err != nil {
			t.Fatalf("SetPassword() failed, %v", err)
		}
		if err := verifyToken(changed, token); err != errInvalidToken {
			t.Errorf("verifyToken() err = %v; want %v", err, errInvalidToken)
		}
	})

	t.Run("invalidated by login", func(t *testing.T) {
		token := makeToken(usr)

		loggedIn := usr
		loggedIn.LastLogin = time.Now()
		if err := verifyToken(loggedIn, token); err != errInvalidToken {
			t.Errorf("verifyToken() err = %v; want %v", err, errInvalidToken)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		origNowFunc := nowFunc
		defer func() { nowFunc = origNowFunc }()

		nowFunc = func() time.Time {
			return time.Now().Add(-(passwordResetTimeoutDelta + 72*time.Hour))
		}
		token := makeToken(usr)
		nowFunc = origNowFunc

		if err := verifyToken(usr, token); err != errTokenExpired {
			t.Errorf("verifyToken() err = %v; want %v", err, errTokenExpired)
		}
	})
}

func Test_EncodeUID(t *testing.T) {
	usr := User{ID: 42}
	id, err := decodeUID(EncodeUID(usr))
	if err != nil {
		t.Fatalf("decodeUID() failed, %v", err)
	}
	if id != usr.ID {
		t.Errorf("decodeUID() = %v; want %v", id, usr.ID)
	}
}
