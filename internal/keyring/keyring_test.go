package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/weekdiary/internal/constants"
)

func TestSetAndGetToken(t *testing.T) {
	gokeyring.MockInit()

	if err := SetToken("  ghp_example1234 \n"); err != nil {
		t.Fatalf("SetToken() failed: %v", err)
	}
	got, err := GetToken()
	if err != nil {
		t.Fatalf("GetToken() failed: %v", err)
	}
	if got != "ghp_example1234" {
		t.Errorf("GetToken() = %q, want trimmed token", got)
	}
}

func TestSetTokenEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetToken("   "); err == nil {
		t.Error("SetToken with blank token should fail")
	}
}

func TestGetTokenNotFound(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteToken()

	if _, err := GetToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetToken() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteToken(t *testing.T) {
	gokeyring.MockInit()

	if err := SetToken("ghp_x"); err != nil {
		t.Fatalf("SetToken() failed: %v", err)
	}
	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken() failed: %v", err)
	}
	if err := DeleteToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteToken() error = %v, want %v", err, ErrNotFound)
	}
}

func TestKeyringUnavailable(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("no dbus"))
	defer gokeyring.MockInit()

	if _, err := GetToken(); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("GetToken() error = %v, want %v", err, ErrKeyringUnavailable)
	}
	if IsAvailable() {
		t.Error("IsAvailable() = true with a failing keyring")
	}
}

func TestResolveToken(t *testing.T) {
	gokeyring.MockInit()
	if err := SetToken("from-keyring"); err != nil {
		t.Fatal(err)
	}

	t.Setenv(constants.EnvGitHubToken, "")
	token, src, err := ResolveToken()
	if err != nil || token != "from-keyring" || src != SourceKeyring {
		t.Errorf("ResolveToken() = %q, %q, %v", token, src, err)
	}

	t.Setenv(constants.EnvGitHubToken, "from-env")
	token, src, err = ResolveToken()
	if err != nil || token != "from-env" || src != SourceEnv {
		t.Errorf("ResolveToken() = %q, %q, %v", token, src, err)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"abc":          "***",
		"ghp_abcd1234": "********1234",
	}
	for in, want := range tests {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
