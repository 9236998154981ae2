package manifest

import "testing"

func TestEndpoints_URLs(t *testing.T) {
	tests := []struct {
		name       string
		endpoints  Endpoints
		wantAction string
		wantFile   string
	}{
		{
			name:       "defaults",
			endpoints:  Endpoints{},
			wantAction: "https://app.example.com/xas/",
			wantFile:   "https://app.example.com/file",
		},
		{
			name:       "prefixed without leading slash",
			endpoints:  Endpoints{Action: "mx/xas/", File: "mx/file"},
			wantAction: "https://app.example.com/mx/xas/",
			wantFile:   "https://app.example.com/mx/file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.endpoints.ActionURL("https://app.example.com"); got != tt.wantAction {
				t.Errorf("ActionURL() = %v, want %v", got, tt.wantAction)
			}
			if got := tt.endpoints.FileURL("https://app.example.com"); got != tt.wantFile {
				t.Errorf("FileURL() = %v, want %v", got, tt.wantFile)
			}
		})
	}
}
