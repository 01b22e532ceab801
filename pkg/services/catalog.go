package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	"portfolio-site/pkg/config"
	"portfolio-site/pkg/models"
	"portfolio-site/pkg/rowstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RelatedLimit caps the related records shown under a detail view.
const RelatedLimit = 3

// ErrNotFound is returned for ids that do not name a published record.
var ErrNotFound = errors.New("not found")

// State is where a listing or detail view ended up.
type State int

const (
	StateLoading State = iota
	StateLoaded
	// StateEmpty is a listing whose fetch failed. It renders like a
	// loaded listing with no results.
	StateEmpty
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateEmpty:
		return "empty"
	case StateNotFound:
		return "not_found"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Listing[T any] struct {
	State     State          `json:"state"`
	Items     []T            `json:"items"`
	Total     int            `json:"total"`
	Facets    []config.Facet `json:"facets"`
	Selection Selection      `json:"selection"`
}

type Detail[T any] struct {
	State   State `json:"state"`
	Record  *T    `json:"record,omitempty"`
	Related []T   `json:"related"`
}

type Home struct {
	Articles []models.Article `json:"articles"`
	Projects []models.Project `json:"projects"`
}

// ResourceAccess is the outcome of opening a resource.
type ResourceAccess struct {
	Resource      models.Resource `json:"-"`
	Target        string          `json:"target"`
	DownloadCount int             `json:"download_count"`
}

// Catalog serves the three published collections from a row store.
type Catalog struct {
	store  rowstore.Store
	facets config.FacetTable
	log    *zap.Logger

	articles  *Collection[models.Article]
	projects  *Collection[models.Project]
	resources *Collection[models.Resource]
}

func NewCatalog(store rowstore.Store, facets config.FacetTable, ttl time.Duration, log *zap.Logger) *Catalog {
	return &Catalog{
		store:  store,
		facets: facets,
		log:    log,
		articles: NewCollection(ttl, selectAll[models.Article](store,
			published(models.TableArticles).Order("published_at", false))),
		projects: NewCollection(ttl, selectAll[models.Project](store,
			published(models.TableProjects).Order("year", false))),
		resources: NewCollection(ttl, selectAll[models.Resource](store,
			published(models.TableResources).Order("created_at", false))),
	}
}

func published(table string) rowstore.Query {
	return rowstore.From(table).Eq("is_published", true)
}

func selectAll[T any](store rowstore.Store, q rowstore.Query) func(context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		var items []T
		if err := store.Select(ctx, q, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
}

// Facets returns the configured facets of a collection.
func (c *Catalog) Facets(collection string) []config.Facet {
	return c.facets.For(collection)
}

// Invalidate drops every cached collection.
func (c *Catalog) Invalidate() {
	c.articles.Invalidate()
	c.projects.Invalidate()
	c.resources.Invalidate()
}

func (c *Catalog) Articles(ctx context.Context, sel Selection) Listing[models.Article] {
	return listing(ctx, c, c.articles, models.TableArticles, sel)
}

func (c *Catalog) Projects(ctx context.Context, sel Selection) Listing[models.Project] {
	return listing(ctx, c, c.projects, models.TableProjects, sel)
}

func (c *Catalog) Resources(ctx context.Context, sel Selection) Listing[models.Resource] {
	return listing(ctx, c, c.resources, models.TableResources, sel)
}

func listing[T models.Record](ctx context.Context, c *Catalog, col *Collection[T], table string, sel Selection) Listing[T] {
	l := Listing[T]{Facets: c.facets.For(table), Selection: sel}
	items, err := col.Get(ctx)
	if err != nil {
		c.log.Error("Failed to fetch collection", zap.String("table", table), zap.Error(err))
		l.State = StateEmpty
		l.Items = []T{}
		return l
	}
	l.State = StateLoaded
	l.Total = len(items)
	l.Items = Filter(items, sel)
	return l
}

// Article resolves a published article by slug, plus up to three others in
// the same category.
func (c *Catalog) Article(ctx context.Context, slug string) Detail[models.Article] {
	return detail(ctx, c, models.TableArticles, slug, func(a models.Article) rowstore.Query {
		return published(models.TableArticles).Eq("category", a.Category)
	})
}

// Project resolves a published project by slug, plus up to three others in
// the same domain.
func (c *Catalog) Project(ctx context.Context, slug string) Detail[models.Project] {
	return detail(ctx, c, models.TableProjects, slug, func(p models.Project) rowstore.Query {
		return published(models.TableProjects).Eq("domain", p.Domain)
	})
}

func detail[T models.Record](ctx context.Context, c *Catalog, table, slug string, related func(T) rowstore.Query) Detail[T] {
	if slug == "" {
		return Detail[T]{State: StateNotFound}
	}

	var rec T
	if err := c.store.Single(ctx, published(table).Eq("slug", slug), &rec); err != nil {
		if !errors.Is(err, rowstore.ErrNoRows) {
			c.log.Error("Failed to fetch record",
				zap.String("table", table), zap.String("slug", slug), zap.Error(err))
		}
		return Detail[T]{State: StateNotFound}
	}

	d := Detail[T]{State: StateLoaded, Record: &rec, Related: []T{}}
	var rel []T
	q := related(rec).Neq("id", rec.Key()).Limit(RelatedLimit)
	if err := c.store.Select(ctx, q, &rel); err != nil {
		c.log.Warn("Failed to fetch related records",
			zap.String("table", table), zap.String("slug", slug), zap.Error(err))
		return d
	}
	for _, r := range rel {
		if r.Key() != rec.Key() && len(d.Related) < RelatedLimit {
			d.Related = append(d.Related, r)
		}
	}
	return d
}

// Home fetches the latest articles and projects concurrently. Each section
// degrades to empty on its own.
func (c *Catalog) Home(ctx context.Context) Home {
	h := Home{Articles: []models.Article{}, Projects: []models.Project{}}
	var g errgroup.Group
	g.Go(func() error {
		var items []models.Article
		q := published(models.TableArticles).Order("published_at", false).Limit(3)
		if err := c.store.Select(ctx, q, &items); err != nil {
			c.log.Error("Failed to fetch latest articles", zap.Error(err))
			return nil
		}
		h.Articles = items
		return nil
	})
	g.Go(func() error {
		var items []models.Project
		q := published(models.TableProjects).Order("year", false).Limit(3)
		if err := c.store.Select(ctx, q, &items); err != nil {
			c.log.Error("Failed to fetch latest projects", zap.Error(err))
			return nil
		}
		h.Projects = items
		return nil
	})
	_ = g.Wait()
	return h
}

// AccessResource counts one access of a published resource and returns
// the link to open. A failed increment is logged and the link is still
// returned.
func (c *Catalog) AccessResource(ctx context.Context, id string) (*ResourceAccess, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var res models.Resource
	if err := c.store.Single(ctx, published(models.TableResources).Eq("id", id), &res); err != nil {
		if errors.Is(err, rowstore.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	access := &ResourceAccess{Resource: res, Target: res.Target(), DownloadCount: res.DownloadCount}
	n, err := c.store.Increment(ctx, models.TableResources, id, "download_count")
	if err != nil {
		c.log.Error("Failed to count resource access", zap.String("id", id), zap.Error(err))
		return access, nil
	}
	access.DownloadCount = n
	access.Resource.DownloadCount = n
	c.resources.Invalidate()
	return access, nil
}

// ShareLink is the public URL of a record page.
func ShareLink(appURL, section, slug string) string {
	return appURL + "/" + section + "/" + url.PathEscape(slug)
}
