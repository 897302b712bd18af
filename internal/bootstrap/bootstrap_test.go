package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mindboost/internal/platform/config"
	"mindboost/internal/testutil/fakebackend"
)

func newApp(t *testing.T, dataDir, server, store string) *App {
	t.Helper()
	cfg, err := config.New(dataDir, config.Overrides{Server: server})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.CredentialStore = store
	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app
}

func TestSessionSurvivesRestartAndAuthorizesCalls(t *testing.T) {
	for _, store := range []string{config.CredentialStoreSQLite, config.CredentialStoreFile} {
		store := store
		t.Run(store, func(t *testing.T) {
			ctx := context.Background()
			backend := fakebackend.New(t)
			dataDir := t.TempDir()

			first := newApp(t, dataDir, backend.URL, store)
			if first.AuthCLI.IsAuthenticated() {
				t.Fatal("fresh data dir must start logged out")
			}
			if _, err := first.AuthCLI.Login(ctx, "ana", "secret"); err != nil {
				t.Fatalf("login: %v", err)
			}
			if req := backend.Last(); req.Authorization != "" || req.Form["username"] != "ana" {
				t.Fatalf("unexpected login request %+v", req)
			}

			second := newApp(t, dataDir, backend.URL, store)
			if !second.AuthCLI.IsAuthenticated() {
				t.Fatal("session must be restored from the credential store")
			}

			doc := filepath.Join(t.TempDir(), "notes.txt")
			if err := os.WriteFile(doc, []byte("photosynthesis"), 0o644); err != nil {
				t.Fatalf("write doc: %v", err)
			}
			if _, _, err := second.StudyCLI.Convert(ctx, doc); err != nil {
				t.Fatalf("convert: %v", err)
			}
			if got := backend.Last().Authorization; got != "Bearer tok-1" {
				t.Fatalf("expected restored bearer token, got %q", got)
			}

			if err := second.AuthCLI.Logout(ctx); err != nil {
				t.Fatalf("logout: %v", err)
			}
			third := newApp(t, dataDir, backend.URL, store)
			if third.AuthCLI.IsAuthenticated() {
				t.Fatal("logout must clear the persisted credential")
			}
		})
	}
}
