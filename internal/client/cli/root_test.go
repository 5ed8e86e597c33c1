package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand(BuildInfo{})

	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"watch", "list", "get", "send", "post", "comment", "like", "delete", "dm", "friend", "join", "edit", "sync", "status", "version"} {
		assert.Contains(t, names, want)
	}

	friend, _, err := root.Find([]string{"friend"})
	require.NoError(t, err)
	var sub []string
	for _, cmd := range friend.Commands() {
		sub = append(sub, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"request", "accept", "cancel"}, sub)

	for _, flag := range []string{"server", "ws", "db", "store-backend", "token", "user", "config", "log-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCommand(BuildInfo{Version: "v1.2.3", BuildDate: "2024-05-01", GitCommit: "abc123"})
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Version:    v1.2.3")
	assert.Contains(t, out.String(), "Build Date: 2024-05-01")
	assert.Contains(t, out.String(), "Git Commit: abc123")
}

// fakeServer минимальный REST сервер коллекций
type fakeServer struct {
	data    map[string][]map[string]any
	created []map[string]any
	updated []string
	mu      sync.Mutex
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection := r.URL.Path[len("/api/"):]
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		items := s.data[collection]
		if items == nil {
			items = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"collection": collection, "count": len(items), "data": items})
	case http.MethodPost:
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		body["id"] = "srv-1"
		s.created = append(s.created, body)
		s.data[collection] = append(s.data[collection], body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	case http.MethodPut:
		// как и часть реальных бэкендов, PUT отвечает 204 без тела
		s.updated = append(s.updated, collection)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "not supported", http.StatusMethodNotAllowed)
	}
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(BuildInfo{})
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestListCommandEndToEnd(t *testing.T) {
	srv := &fakeServer{data: map[string][]map[string]any{
		"messages": {
			{"id": "m1", "content": "hi there", "userName": "alice", "timestamp": "2024-05-01T12:00:00Z"},
		},
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	out, err := runRoot(t, "list", "messages", "--server", ts.URL, "--store-backend", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 record(s):")
	assert.Contains(t, out, "[2024-05-01 12:00] alice: hi there")
}

func TestSendCommandEndToEnd(t *testing.T) {
	srv := &fakeServer{data: map[string][]map[string]any{}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	out, err := runRoot(t, "send", "hello", "--server", ts.URL, "--store-backend", "memory", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Message sent (id srv-1)")

	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.Len(t, srv.created, 1)
	assert.Equal(t, "hello", srv.created[0]["content"])
	assert.Equal(t, "u1", srv.created[0]["userId"])
}

func TestFriendAcceptCommandEndToEnd(t *testing.T) {
	srv := &fakeServer{data: map[string][]map[string]any{}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	out, err := runRoot(t, "friend", "accept", "f1", "--server", ts.URL, "--store-backend", "memory", "--user", "u2")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Friend request accepted (id f1)")

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, []string{"friendships/f1"}, srv.updated)
}

func TestSyncCommandBoltEndToEnd(t *testing.T) {
	srv := &fakeServer{data: map[string][]map[string]any{
		"posts": {
			{"id": "p1", "content": "post", "userName": "bob"},
		},
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	db := filepath.Join(t.TempDir(), "client.db")

	out, err := runRoot(t, "sync", "--server", ts.URL, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Pulled from server: 1 entries")

	// записи переживают перезапуск: list показывает их даже при недоступном сервере
	ts.Close()
	out, err = runRoot(t, "list", "posts", "--server", ts.URL, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Warning: failed to fetch posts")
	assert.Contains(t, out, "bob: post")
}

func TestRootCommandInvalidConfig(t *testing.T) {
	_, err := runRoot(t, "list", "messages", "--store-backend", "floppy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floppy")
}
