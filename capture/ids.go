package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/ivansanturion-collab/jarvis/internal/fsstore"
)

// cachedIDs is the on-disk shape of the identifier cache.
type cachedIDs struct {
	Sections        map[string]string `json:"secciones"`
	ProjectFieldGID *string           `json:"campo_proyecto_gid"`
	ProjectOptions  map[string]string `json:"opciones_proyecto"`
	OwnerUserGID    *string           `json:"owner_user_gid"`
}

// IDCache resolves backend object identifiers: section GIDs, the project
// custom field and its enum options, and the owner user. Identifiers are
// discovered once via API introspection and persisted; Refresh discards the
// file and re-discovers. The digest scheduler resolves identifiers from its
// own goroutine, so ids is guarded.
type IDCache struct {
	backend      Backend
	path         string
	projectGID   string
	workspaceGID string
	logger       *slog.Logger

	mu  sync.RWMutex
	ids cachedIDs
}

func NewIDCache(backend Backend, path, projectGID, workspaceGID string, logger *slog.Logger) *IDCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &IDCache{
		backend:      backend,
		path:         path,
		projectGID:   projectGID,
		workspaceGID: workspaceGID,
		logger:       logger,
	}
}

// LoadOrDiscover populates the cache from disk, running API discovery on
// first use. A cache file written before owner tracking existed gets the
// owner identifier backfilled and re-persisted.
func (c *IDCache) LoadOrDiscover(ctx context.Context) error {
	var ids cachedIDs
	found, err := fsstore.ReadJSON(c.path, &ids)
	if err != nil {
		return fmt.Errorf("read identifier cache: %w", err)
	}
	if found {
		c.setIDs(ids)
		c.logger.Info("asana_ids_loaded", "path", c.path)
		if c.OwnerUserGID() == "" {
			gid, err := c.discoverOwner(ctx)
			if err != nil {
				c.logger.Error("asana_owner_backfill_error", "error", err)
				return nil
			}
			c.mu.Lock()
			c.ids.OwnerUserGID = &gid
			c.mu.Unlock()
			if err := c.persist(); err != nil {
				c.logger.Error("asana_ids_persist_error", "error", err)
				return nil
			}
			c.logger.Info("asana_owner_backfilled", "path", c.path)
		}
		return nil
	}

	c.logger.Info("asana_ids_discovering")
	if err := c.discover(ctx); err != nil {
		return err
	}
	if err := c.persist(); err != nil {
		return err
	}
	c.logger.Info("asana_ids_saved", "path", c.path)
	return nil
}

// Refresh discards persisted identifiers and re-runs discovery.
func (c *IDCache) Refresh(ctx context.Context) error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove identifier cache: %w", err)
	}
	return c.LoadOrDiscover(ctx)
}

func (c *IDCache) discover(ctx context.Context) error {
	ids := cachedIDs{
		Sections:       map[string]string{},
		ProjectOptions: map[string]string{},
	}

	sections, err := c.backend.GetSectionsForProject(ctx, c.projectGID)
	if err != nil {
		return fmt.Errorf("discover sections: %w", err)
	}
	for _, section := range sections {
		ids.Sections[section.Name] = section.GID
		c.logger.Info("asana_section_discovered", "name", section.Name, "gid", section.GID)
	}

	project, err := c.backend.GetProject(ctx, c.projectGID)
	if err != nil {
		return fmt.Errorf("discover custom fields: %w", err)
	}
	for _, setting := range project.CustomFieldSettings {
		field := setting.CustomField
		if field == nil || field.Name != projectFieldName {
			continue
		}
		gid := field.GID
		ids.ProjectFieldGID = &gid
		c.logger.Info("asana_project_field_discovered", "gid", gid)
		for _, option := range field.EnumOptions {
			if option.EnumEnabled() {
				ids.ProjectOptions[option.Name] = option.GID
			}
		}
		break
	}
	if ids.ProjectFieldGID == nil {
		c.logger.Warn("asana_project_field_missing", "field", projectFieldName)
	}

	if gid, err := c.discoverOwner(ctx); err != nil {
		c.logger.Error("asana_owner_discover_error", "error", err)
	} else {
		ids.OwnerUserGID = &gid
	}

	c.setIDs(ids)
	return nil
}

// discoverOwner resolves the authenticated user as default assignee. Missing
// workspace membership is logged as a warning, not treated as fatal.
func (c *IDCache) discoverOwner(ctx context.Context) (string, error) {
	me, err := c.backend.GetCurrentUser(ctx)
	if err != nil {
		return "", err
	}
	member := false
	for _, ws := range me.Workspaces {
		if ws.GID == c.workspaceGID {
			member = true
			break
		}
	}
	if member {
		c.logger.Info("asana_owner_discovered", "user", me.Name, "gid", me.GID)
	} else {
		c.logger.Warn("asana_owner_outside_workspace",
			"user", me.Name, "gid", me.GID, "workspace", c.workspaceGID)
	}
	return me.GID, nil
}

func (c *IDCache) setIDs(ids cachedIDs) {
	c.mu.Lock()
	c.ids = ids
	c.mu.Unlock()
}

func (c *IDCache) persist() error {
	c.mu.RLock()
	ids := c.ids
	c.mu.RUnlock()
	return fsstore.WriteJSONAtomic(c.path, ids, fsstore.FileOptions{})
}

// ResolveSection maps a short section name ("Hoy", "Semana") to its GID.
func (c *IDCache) ResolveSection(shortName string) (string, bool) {
	c.mu.RLock()
	gid, ok := resolveShortName(c.ids.Sections, shortName)
	c.mu.RUnlock()
	if !ok {
		c.logger.Warn("asana_section_not_found", "name", shortName)
	}
	return gid, ok
}

// ResolveProjectOption maps a project name to its enum option GID.
func (c *IDCache) ResolveProjectOption(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return resolveShortName(c.ids.ProjectOptions, name)
}

// ProjectFieldGID returns the GID of the project custom field, or "" when
// discovery could not find it.
func (c *IDCache) ProjectFieldGID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ids.ProjectFieldGID == nil {
		return ""
	}
	return *c.ids.ProjectFieldGID
}

// OwnerUserGID returns the default assignee, or "" when unknown.
func (c *IDCache) OwnerUserGID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ids.OwnerUserGID == nil {
		return ""
	}
	return *c.ids.OwnerUserGID
}

// resolveShortName matches exactly first, then falls back to the first
// entry, in sorted order, whose name ends with " "+shortName. The suffix
// pass tolerates decorative prefixes such as "🔥 Hoy".
func resolveShortName(entries map[string]string, shortName string) (string, bool) {
	if gid, ok := entries[shortName]; ok && gid != "" {
		return gid, true
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	suffix := " " + shortName
	for _, name := range names {
		if strings.HasSuffix(name, suffix) {
			return entries[name], true
		}
	}
	return "", false
}
