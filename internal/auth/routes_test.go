package auth

import "testing"

func TestRouteClassifier(t *testing.T) {
	classifier := NewRouteClassifier(
		[]string{"/api/clients", "/api/clients/*"},
		[]string{"/health/*", "/auth/login", "/auth/refresh"},
	)

	tests := []struct {
		path string
		want Classification
	}{
		{"/auth/login", ClassPublic},
		{"/auth/refresh", ClassPublic},
		{"/health/live", ClassPublic},
		{"/health/ready", ClassPublic},
		{"/api/clients", ClassRelaxed},
		{"/api/clients/42", ClassRelaxed},
		{"/api/clients/42/notes", ClassRelaxed},
		{"/api/clientsabc", ClassStrict},
		{"/auth/logout", ClassStrict},
		{"/auth/me", ClassStrict},
		{"/api/attendance", ClassStrict},
		{"/", ClassStrict},
	}

	for _, tt := range tests {
		if got := classifier.Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}
