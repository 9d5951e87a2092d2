package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/postservice"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testServer builds an httptest server over a small fixture vault.
func testServer(t *testing.T, dev bool, authToken string) *httptest.Server {
	t.Helper()
	root, store := testutil.TestVault(t)
	testutil.WriteFile(t, root, "a.md",
		"---\ntitle: \"A\"\ndate: \"2024-01-02\"\ntopics:\n  - painting\n---\nBody with [[b post]].\n")
	testutil.WriteFile(t, root, "essays/b-post.md",
		"---\ntitle: \"B Post\"\ndate: \"2024-01-03\"\n---\nBody of b.\n")
	testutil.WriteFile(t, root, "c.md",
		"---\ntitle: \"C\"\ndate: \"2024-01-01\"\npublished: false\n---\nDraft.\n")

	svc := postservice.New(store, testutil.TestDB(t), render.New("writing"), testLogger(), dev)
	r := NewRouter(svc, authToken != "", authToken, dev, nil)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp
}

func TestListPosts(t *testing.T) {
	srv := testServer(t, false, "")

	var env struct {
		Data []PostSummary `json:"data"`
	}
	resp := getJSON(t, srv, "/posts", &env)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(env.Data) != 2 {
		t.Fatalf("len = %d, want 2 (draft hidden)", len(env.Data))
	}
	if env.Data[0].Slug != "b-post" {
		t.Errorf("first slug = %q, want b-post (date desc)", env.Data[0].Slug)
	}
}

func TestListPosts_TopicFilter(t *testing.T) {
	srv := testServer(t, false, "")

	var env struct {
		Data []PostSummary `json:"data"`
	}
	getJSON(t, srv, "/posts?topic=painting", &env)
	if len(env.Data) != 1 || env.Data[0].Slug != "a" {
		t.Errorf("data = %v, want only a", env.Data)
	}
}

func TestListPosts_FolderFilter(t *testing.T) {
	srv := testServer(t, false, "")

	var env struct {
		Data []PostSummary `json:"data"`
	}
	getJSON(t, srv, "/posts?folder=essays", &env)
	if len(env.Data) != 1 || env.Data[0].Slug != "b-post" {
		t.Errorf("data = %v, want only b-post", env.Data)
	}
}

func TestGetPost(t *testing.T) {
	srv := testServer(t, false, "")

	var env struct {
		Data PostDetail `json:"data"`
	}
	resp := getJSON(t, srv, "/posts/a", &env)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if env.Data.Slug != "a" {
		t.Errorf("slug = %q", env.Data.Slug)
	}
	if !strings.Contains(env.Data.Content, `<a href="/writing/b-post">`) {
		t.Errorf("content missing rewritten wikilink:\n%s", env.Data.Content)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	srv := testServer(t, false, "")

	var env struct {
		Error string `json:"error"`
	}
	resp := getJSON(t, srv, "/posts/ghost", &env)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if env.Error == "" {
		t.Error("error envelope empty")
	}
}

func TestGetPost_UnpublishedVisibleInDev(t *testing.T) {
	prod := testServer(t, false, "")
	resp := getJSON(t, prod, "/posts/c", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("prod status = %d, want 404", resp.StatusCode)
	}

	dev := testServer(t, true, "")
	resp = getJSON(t, dev, "/posts/c", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("dev status = %d, want 200", resp.StatusCode)
	}
}

func TestGetBacklinks(t *testing.T) {
	srv := testServer(t, false, "")

	var env struct {
		Data []Backlink `json:"data"`
	}
	resp := getJSON(t, srv, "/posts/b-post/backlinks", &env)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(env.Data) != 1 || env.Data[0].SourceSlug != "a" {
		t.Errorf("backlinks = %v", env.Data)
	}

	resp = getJSON(t, srv, "/posts/ghost/backlinks", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown target status = %d, want 404", resp.StatusCode)
	}
}

func TestGetTopics(t *testing.T) {
	srv := testServer(t, false, "")

	var env struct {
		Data []TopicCount `json:"data"`
	}
	getJSON(t, srv, "/topics", &env)
	if len(env.Data) != 1 || env.Data[0].Topic != "painting" || env.Data[0].Count != 1 {
		t.Errorf("topics = %v", env.Data)
	}
}

func TestGetFolders(t *testing.T) {
	srv := testServer(t, false, "")

	var env struct {
		Data map[string][]string `json:"data"`
	}
	getJSON(t, srv, "/folders", &env)
	if len(env.Data[""]) != 1 || len(env.Data["essays"]) != 1 {
		t.Errorf("folders = %v", env.Data)
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	srv := testServer(t, false, "")

	resp := getJSON(t, srv, "/search", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGraph(t *testing.T) {
	srv := testServer(t, false, "")

	var env struct {
		Data struct {
			Nodes []any `json:"nodes"`
			Edges []any `json:"edges"`
		} `json:"data"`
	}
	resp := getJSON(t, srv, "/graph", &env)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestLogo(t *testing.T) {
	srv := testServer(t, false, "")

	var env struct {
		Data []struct {
			Points  [][2]float64 `json:"points"`
			Opacity float64      `json:"opacity"`
		} `json:"data"`
	}
	resp := getJSON(t, srv, "/logo", &env)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(env.Data) == 0 || len(env.Data[0].Points) == 0 {
		t.Error("logo payload empty")
	}
}

func TestAuth_TokenRequired(t *testing.T) {
	srv := testServer(t, false, "secret")

	resp := getJSON(t, srv, "/posts", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without token", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/posts", nil)
	req.Header.Set("Authorization", "Bearer secret")
	ok, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer ok.Body.Close()
	if ok.StatusCode != http.StatusOK {
		t.Errorf("status = %d with valid token, want 200", ok.StatusCode)
	}

	req.Header.Set("Authorization", "Bearer wrong")
	bad, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d with wrong token, want 401", bad.StatusCode)
	}
}
