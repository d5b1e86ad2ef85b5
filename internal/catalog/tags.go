package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/text/unicode/norm"

	"photocat/internal/model"
)

const maxTagDepth = 64

// ErrInvalidTagName is returned for tag names containing a comma, which
// exiftool uses as the list separator on write.
var ErrInvalidTagName = errors.New("tag names must not contain commas")

// TagResolver maps hierarchical tag paths ("Places/Europe/Paris") to tag
// rows, creating missing nodes on demand. Resolved chains and full names
// are cached for a bounded time.
type TagResolver struct {
	db    Database
	cache *cache.Cache
	mu    sync.Mutex
}

// NewTagResolver creates a resolver whose cache entries expire after ttl.
func NewTagResolver(db Database, ttl time.Duration) *TagResolver {
	return &TagResolver{
		db:    db,
		cache: cache.New(ttl, 2*ttl),
	}
}

// SplitTagPath normalizes a tag path into its non-empty segments.
func SplitTagPath(path string) []string {
	var segments []string
	for _, seg := range strings.Split(norm.NFC.String(path), "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// Resolve returns the tag at path, creating every missing node.
func (r *TagResolver) Resolve(path string) (*model.Tag, error) {
	segments := SplitTagPath(path)
	if len(segments) == 0 {
		return nil, fmt.Errorf("empty tag path %q", path)
	}
	if len(segments) > maxTagDepth {
		return nil, fmt.Errorf("tag path %q is nested too deeply", path)
	}
	for _, seg := range segments {
		if strings.Contains(seg, ",") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTagName, path)
		}
	}

	key := "path:" + strings.Join(segments, "/")
	if v, ok := r.cache.Get(key); ok {
		return v.(*model.Tag), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var parent *model.Tag
	for i, seg := range segments {
		prefix := "path:" + strings.Join(segments[:i+1], "/")
		if v, ok := r.cache.Get(prefix); ok {
			parent = v.(*model.Tag)
			continue
		}

		parentID := ""
		if parent != nil {
			parentID = parent.ID
		}
		tag, err := r.db.FindChildTag(parentID, seg)
		if err != nil {
			return nil, fmt.Errorf("finding tag %q: %w", seg, err)
		}
		if tag == nil {
			tag = &model.Tag{Name: seg}
			if parent != nil {
				tag.ParentID = sql.NullString{String: parent.ID, Valid: true}
			}
			if err := r.db.CreateTag(tag); err != nil {
				return nil, err
			}
		}
		r.cache.SetDefault(prefix, tag)
		r.cache.SetDefault("name:"+tag.ID, strings.Join(segments[:i+1], "/"))
		parent = tag
	}
	return parent, nil
}

// ResolveAll resolves every path and returns the distinct tag IDs.
func (r *TagResolver) ResolveAll(paths []string) ([]string, error) {
	seen := map[string]bool{}
	var ids []string
	for _, p := range paths {
		tag, err := r.Resolve(p)
		if err != nil {
			return nil, err
		}
		if !seen[tag.ID] {
			seen[tag.ID] = true
			ids = append(ids, tag.ID)
		}
	}
	return ids, nil
}

// FullName returns the "/"-joined path of a tag.
func (r *TagResolver) FullName(id string) (string, error) {
	if v, ok := r.cache.Get("name:" + id); ok {
		return v.(string), nil
	}

	var names []string
	current := id
	for depth := 0; current != ""; depth++ {
		if depth >= maxTagDepth {
			return "", fmt.Errorf("tag %s is nested too deeply", id)
		}
		tag, err := r.db.FindTagByID(current)
		if err != nil {
			return "", fmt.Errorf("finding tag: %w", err)
		}
		if tag == nil {
			return "", fmt.Errorf("tag %s not found", current)
		}
		names = append(names, tag.Name)
		current = tag.ParentID.String
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	full := strings.Join(names, "/")
	r.cache.SetDefault("name:"+id, full)
	return full, nil
}

// FullNames returns the sorted full names of the given tag IDs.
func (r *TagResolver) FullNames(ids []string) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, err := r.FullName(id)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Flush drops every cached entry.
func (r *TagResolver) Flush() {
	r.cache.Flush()
}
