package capture

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ivansanturion-collab/jarvis/asana"
	"github.com/ivansanturion-collab/jarvis/internal/fsstore"
)

func boolPtr(b bool) *bool { return &b }

func discoveryBackend() *fakeBackend {
	return &fakeBackend{
		sections: []asana.Section{
			{GID: "sec-hoy", Name: "🔥 Hoy"},
			{GID: "sec-semana", Name: "Semana"},
			{GID: "sec-hecho", Name: "Hecho"},
		},
		project: asana.Project{
			GID: "proj-1",
			CustomFieldSettings: []asana.CustomFieldSetting{
				{CustomField: &asana.CustomFieldDef{
					GID:  "cf-1",
					Name: "Proyecto",
					EnumOptions: []asana.EnumOption{
						{GID: "opt-speaker", Name: "🎤 Speaker"},
						{GID: "opt-personal", Name: "Personal"},
						{GID: "opt-off", Name: "Viejo", Enabled: boolPtr(false)},
					},
				}},
			},
		},
		user: asana.User{
			GID:        "user-1",
			Name:       "Ivan",
			Workspaces: []asana.Workspace{{GID: "ws-1"}},
		},
	}
}

func TestIDCacheDiscoverAndPersist(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "asana_ids.json")
	backend := discoveryBackend()
	cache := NewIDCache(backend, path, "proj-1", "ws-1", nil)
	if err := cache.LoadOrDiscover(context.Background()); err != nil {
		t.Fatalf("LoadOrDiscover() error = %v", err)
	}

	if got := cache.ProjectFieldGID(); got != "cf-1" {
		t.Errorf("ProjectFieldGID() = %q, want %q", got, "cf-1")
	}
	if got := cache.OwnerUserGID(); got != "user-1" {
		t.Errorf("OwnerUserGID() = %q, want %q", got, "user-1")
	}
	if _, ok := cache.ResolveProjectOption("Viejo"); ok {
		t.Error("ResolveProjectOption(Viejo) resolved a disabled option")
	}

	// A second cache loads from disk without hitting the backend.
	reload := NewIDCache(&fakeBackend{}, path, "proj-1", "ws-1", nil)
	if err := reload.LoadOrDiscover(context.Background()); err != nil {
		t.Fatalf("LoadOrDiscover() reload error = %v", err)
	}
	if gid, ok := reload.ResolveSection("Semana"); !ok || gid != "sec-semana" {
		t.Errorf("ResolveSection(Semana) = %q, %v after reload", gid, ok)
	}
}

func TestIDCacheOwnerBackfill(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "asana_ids.json")
	stale := cachedIDs{
		Sections:       map[string]string{"Hoy": "sec-hoy"},
		ProjectOptions: map[string]string{},
	}
	if err := fsstore.WriteJSONAtomic(path, stale, fsstore.FileOptions{}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	backend := discoveryBackend()
	cache := NewIDCache(backend, path, "proj-1", "ws-1", nil)
	if err := cache.LoadOrDiscover(context.Background()); err != nil {
		t.Fatalf("LoadOrDiscover() error = %v", err)
	}
	if got := cache.OwnerUserGID(); got != "user-1" {
		t.Errorf("OwnerUserGID() = %q, want backfilled %q", got, "user-1")
	}

	var onDisk cachedIDs
	if _, err := fsstore.ReadJSON(path, &onDisk); err != nil {
		t.Fatalf("read cache file: %v", err)
	}
	if onDisk.OwnerUserGID == nil || *onDisk.OwnerUserGID != "user-1" {
		t.Errorf("on-disk owner_user_gid = %v, want user-1", onDisk.OwnerUserGID)
	}
}

func TestIDCacheRefreshRediscovers(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "asana_ids.json")
	backend := discoveryBackend()
	cache := NewIDCache(backend, path, "proj-1", "ws-1", nil)
	if err := cache.LoadOrDiscover(context.Background()); err != nil {
		t.Fatalf("LoadOrDiscover() error = %v", err)
	}

	backend.sections = append(backend.sections, asana.Section{GID: "sec-backlog", Name: "Backlog"})
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if gid, ok := cache.ResolveSection("Backlog"); !ok || gid != "sec-backlog" {
		t.Errorf("ResolveSection(Backlog) = %q, %v after refresh", gid, ok)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("cache file missing after refresh: %v", err)
	}
}

// The digest scheduler resolves identifiers from its own goroutine while
// /refresh re-runs discovery in the poll loop; this must be race-free.
func TestIDCacheConcurrentRefreshAndResolve(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "asana_ids.json")
	backend := discoveryBackend()
	cache := NewIDCache(backend, path, "proj-1", "ws-1", nil)
	if err := cache.LoadOrDiscover(context.Background()); err != nil {
		t.Fatalf("LoadOrDiscover() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if err := cache.Refresh(context.Background()); err != nil {
					t.Errorf("Refresh() error = %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				cache.ResolveSection("Hoy")
				cache.ResolveProjectOption("Speaker")
				cache.ProjectFieldGID()
				cache.OwnerUserGID()
			}
		}()
	}
	wg.Wait()

	if gid, ok := cache.ResolveSection("Hoy"); !ok || gid != "sec-hoy" {
		t.Errorf("ResolveSection(Hoy) = %q, %v after concurrent refresh", gid, ok)
	}
	if got := cache.OwnerUserGID(); got != "user-1" {
		t.Errorf("OwnerUserGID() = %q, want %q", got, "user-1")
	}
}

func TestResolveShortNameExactBeatsSuffix(t *testing.T) {
	t.Parallel()

	entries := map[string]string{
		"Speaker":   "A",
		"🎤 Speaker": "B",
	}
	if gid, ok := resolveShortName(entries, "Speaker"); !ok || gid != "A" {
		t.Errorf("resolveShortName(Speaker) = %q, %v, want exact match A", gid, ok)
	}
}

func TestResolveShortNameSuffixFallback(t *testing.T) {
	t.Parallel()

	entries := map[string]string{"🎤 Speaker": "B"}
	if gid, ok := resolveShortName(entries, "Speaker"); !ok || gid != "B" {
		t.Errorf("resolveShortName(Speaker) = %q, %v, want suffix match B", gid, ok)
	}
	if _, ok := resolveShortName(entries, "Nomadic"); ok {
		t.Error("resolveShortName(Nomadic) resolved, want not found")
	}
}
