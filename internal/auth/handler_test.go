package auth

import "testing"

func TestSafeRedirect(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"/users", "/users"},
		{"/users?page=2", "/users?page=2"},
		{"//evil.example.com", ""},
		{"https://evil.example.com", ""},
		{"users", ""},
	}
	for _, tc := range cases {
		if got := safeRedirect(tc.in); got != tc.want {
			t.Errorf("safeRedirect(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
