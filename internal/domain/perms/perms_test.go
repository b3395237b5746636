package perms

import "testing"

func TestHas(t *testing.T) {
	tests := []struct {
		name        string
		permissions []string
		permission  string
		want        bool
	}{
		{"точное совпадение", []string{"inquiries", "customers"}, "inquiries", true},
		{"wildcard all", []string{"all"}, "users", true},
		{"права нет", []string{"inquiries"}, "customers", false},
		{"пустой список", nil, "inquiries", false},
		{"регистр имеет значение", []string{"Inquiries"}, "inquiries", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Has(tt.permissions, tt.permission); got != tt.want {
				t.Errorf("Has(%v, %q) = %v, ожидается %v", tt.permissions, tt.permission, got, tt.want)
			}
		})
	}
}

func TestIsAdminRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"Admin", true},
		{"Managing Director", true},
		{"Manager", false},
		{"admin", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := IsAdminRole(tt.role); got != tt.want {
				t.Errorf("IsAdminRole(%q) = %v, ожидается %v", tt.role, got, tt.want)
			}
		})
	}
}
