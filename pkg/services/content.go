package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"portfolio-site/pkg/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// contentNamespace derives stable ids for records whose files carry none.
var contentNamespace = uuid.MustParse("6f1c2a52-3a1e-4c55-9a7e-2f0c8f4b9d10")

// Collections that can be imported from a content directory, one
// subdirectory each.
var ContentCollections = []string{models.TableArticles, models.TableProjects, models.TableResources}

// Upserter is the write side the importer needs.
type Upserter interface {
	Upsert(ctx context.Context, table string, row any) error
}

type ImportStats struct {
	Imported map[string]int
	Skipped  int
}

// Importer loads markdown files with front matter into the collection store.
type Importer struct {
	store    Upserter
	validate *validator.Validate
	log      *zap.Logger
}

func NewImporter(store Upserter, log *zap.Logger) *Importer {
	return &Importer{store: store, validate: validator.New(), log: log}
}

// ImportDir walks dir/{articles,projects,resources}. Files that fail to
// parse or validate are logged and skipped; store errors abort.
func (im *Importer) ImportDir(ctx context.Context, dir string) (ImportStats, error) {
	stats := ImportStats{Imported: map[string]int{}}
	for _, collection := range ContentCollections {
		root := filepath.Join(dir, collection)
		if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isContentFile(d.Name()) {
				return nil
			}

			rec, err := im.readFile(collection, path)
			if err != nil {
				im.log.Warn("Skipping content file", zap.String("path", path), zap.Error(err))
				stats.Skipped++
				return nil
			}
			if err := im.store.Upsert(ctx, collection, rec); err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			stats.Imported[collection]++
			return nil
		})
		if err != nil {
			return stats, err
		}
	}
	im.log.Info("Content imported",
		zap.String("dir", dir),
		zap.Any("imported", stats.Imported),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

func isContentFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

func (im *Importer) readFile(collection, path string) (any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rec, err := DecodeRecord(collection, name, content, info.ModTime())
	if err != nil {
		return nil, err
	}
	if err := im.validate.Struct(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DecodeRecord turns one content file into a typed record. name (the file
// name without extension) is the default slug; modTime stands in for a
// missing date. "draft: true" unpublishes.
func DecodeRecord(collection, name string, content []byte, modTime time.Time) (any, error) {
	fm, body, _, err := ParseFrontMatter(content)
	if err != nil {
		return nil, err
	}
	fm = sanitizeFrontMatter(fm)

	if _, ok := fm["is_published"]; !ok {
		draft, _ := fm["draft"].(bool)
		fm["is_published"] = !draft
	}
	delete(fm, "draft")

	bodyField := "description"
	dateField := ""
	switch collection {
	case models.TableArticles:
		bodyField, dateField = "content", "published_at"
	case models.TableProjects:
		if m, ok := fm["metrics"].(map[string]interface{}); ok {
			for k, v := range m {
				m[k] = fmt.Sprint(v)
			}
		}
	case models.TableResources:
		dateField = "created_at"
	default:
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	if collection != models.TableResources {
		if s, _ := fm["slug"].(string); s == "" {
			fm["slug"] = Slugify(name)
		}
	}
	if _, ok := fm[bodyField]; !ok && body != "" {
		fm[bodyField] = body
	}
	if dateField != "" {
		if v, ok := fm[dateField]; ok {
			t, err := parseDate(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", dateField, err)
			}
			fm[dateField] = t
		} else {
			fm[dateField] = modTime.UTC()
		}
	}

	data, err := json.Marshal(canonicalizeValueForJSON(fm))
	if err != nil {
		return nil, err
	}

	key := name
	if s, ok := fm["slug"].(string); ok {
		key = s
	}
	stableID := uuid.NewSHA1(contentNamespace, []byte(collection+"/"+key))

	switch collection {
	case models.TableArticles:
		var a models.Article
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		if a.ID == uuid.Nil {
			a.ID = stableID
		}
		return a, nil
	case models.TableProjects:
		var p models.Project
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		if p.ID == uuid.Nil {
			p.ID = stableID
		}
		return p, nil
	default:
		var r models.Resource
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		if r.ID == uuid.Nil {
			r.ID = stableID
		}
		return r, nil
	}
}

// Slugify lower-cases s, folds accents ("Café" -> "cafe") and joins its
// letter/digit runs with hyphens. Letters without an ASCII base are kept.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func SafeJoin(root, sub, target string) string {
	cleanTarget := filepath.Clean(target)
	if strings.Contains(cleanTarget, "..") || filepath.IsAbs(cleanTarget) {
		return ""
	}
	return filepath.Join(root, sub, cleanTarget)
}

// NewContentFile writes a draft for collection named after title under
// dir and returns its path. It fails if the file already exists.
func NewContentFile(dir, collection, title, format string, now time.Time) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("title %q has no usable characters", title)
	}

	fm := map[string]interface{}{
		"title": title,
		"draft": true,
	}
	body := ""
	switch collection {
	case models.TableArticles:
		fm["slug"] = slug
		fm["excerpt"] = ""
		fm["category"] = ""
		fm["tags"] = []interface{}{}
		fm["author"] = ""
		fm["published_at"] = now.UTC().Format(time.RFC3339)
		fm["read_time"] = 5
		body = "Write the article here."
	case models.TableProjects:
		fm["slug"] = slug
		fm["domain"] = ""
		fm["tools"] = []interface{}{}
		fm["scope"] = ""
		fm["year"] = now.Year()
		body = "Describe the project here."
	case models.TableResources:
		fm["type"] = models.ResourceGuide
		fm["topic"] = ""
		fm["file_url"] = ""
		fm["created_at"] = now.UTC().Format(time.RFC3339)
		body = "Describe the resource here."
	default:
		return "", fmt.Errorf("unknown collection %q", collection)
	}

	path := SafeJoin(dir, collection, slug+".md")
	if path == "" {
		return "", fmt.Errorf("invalid path for %q", slug)
	}
	if _, err := os.Stat(path); err == nil {
		return "", os.ErrExist
	}

	content, err := ConstructFileContent(fm, body, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", err
	}
	return path, nil
}
