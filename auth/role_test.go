package auth

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "user", want: RoleUser},
		{in: "admin", want: RoleAdmin},
		{in: "Admin", wantErr: true},
		{in: "", wantErr: true},
		{in: "root", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRole) {
					t.Errorf("ParseRole(%q) error = %v, want ErrInvalidRole", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRole(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRole_Valid(t *testing.T) {
	if RoleUnknown.Valid() {
		t.Error("RoleUnknown.Valid() = true, want false")
	}
	if !RoleUser.Valid() || !RoleAdmin.Valid() {
		t.Error("known roles must be valid")
	}
	if Role(9).Valid() {
		t.Error("Role(9).Valid() = true, want false")
	}
}

func TestRole_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Role Role `json:"role"`
	}{RoleAdmin})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `{"role":"admin"}` {
		t.Errorf("Marshal() = %s", b)
	}

	if _, err := json.Marshal(RoleUnknown); err == nil {
		t.Error("Marshal(RoleUnknown) error = nil, want error")
	}

	var out struct {
		Role Role `json:"role"`
	}
	if err := json.Unmarshal([]byte(`{"role":"superuser"}`), &out); err == nil {
		t.Error("Unmarshal(superuser) error = nil, want error")
	}
}
