//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/proneo/platform/internal/domain"
)

// Token issues a session token for role.
func (env *TestEnv) Token(role domain.Role) string {
	env.t.Helper()
	tok, err := env.JWTMgr.GenerateToken(string(role)+"@proneo.com", role, "")
	if err != nil {
		env.t.Fatalf("Token: %v", err)
	}
	return tok
}

// Do sends an authenticated request. An empty device omits X-Device-ID; a
// nil body sends none.
func (env *TestEnv) Do(method, path string, role domain.Role, device string, body interface{}) *http.Response {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("Do: encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("Do: new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+env.Token(role))
	}
	if device != "" {
		req.Header.Set("X-Device-ID", device)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("Do %s %s: %v", method, path, err)
	}
	return resp
}
