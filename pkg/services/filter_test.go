package services

import (
	"strings"
	"testing"

	"portfolio-site/pkg/config"
	"portfolio-site/pkg/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func article(title, category string, tags ...string) models.Article {
	return models.Article{
		ID:          uuid.New(),
		Slug:        Slugify(title),
		Title:       title,
		Excerpt:     "About " + title,
		Category:    category,
		Tags:        tags,
		IsPublished: true,
	}
}

func articleTitles(items []models.Article) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func fiveArticles() []models.Article {
	return []models.Article{
		article("Prompting for Designers", "AI in Learning", "ai", "prompts"),
		article("Onboarding Redesign", "Case Studies", "onboarding"),
		article("Storyboards That Work", "Instructional Design", "storyboard"),
		article("Sales Academy Rollout", "Case Studies", "sales"),
		article("Accessible Quizzes", "Best Practices", "a11y"),
	}
}

func TestFilterCategoryKeepsOrder(t *testing.T) {
	items := fiveArticles()
	sel := Selection{Facets: map[string]string{"category": "Case Studies"}}

	got := articleTitles(Filter(items, sel))
	want := []string{"Onboarding Redesign", "Sales Academy Rollout"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterSearchIsCaseInsensitive(t *testing.T) {
	items := []models.Article{
		article("AI in Learning", "AI in Learning"),
		article("Design Basics", "Instructional Design"),
	}
	items[0].Excerpt = ""
	items[1].Excerpt = ""

	for _, q := range []string{"AI", "ai", "Ai"} {
		got := articleTitles(Filter(items, Selection{Search: q}))
		assert.Equal(t, []string{"AI in Learning"}, got, "search %q", q)
	}
}

func TestFilterSearchFields(t *testing.T) {
	a := article("Plain Title", "Case Studies", "Gamification")
	a.Excerpt = "A story about onboarding"

	assert.True(t, Matches(a, Selection{Search: "plain"}), "title")
	assert.True(t, Matches(a, Selection{Search: "ONBOARD"}), "excerpt")
	assert.True(t, Matches(a, Selection{Search: "gamif"}), "tag")
	assert.False(t, Matches(a, Selection{Search: "case studies"}), "category is not searched")

	p := models.Project{Title: "LMS Migration", Description: "Moving courses", Tools: []string{"Rise 360"}}
	assert.True(t, Matches(p, Selection{Search: "rise"}), "tool")

	r := models.Resource{Title: "Checklist", Description: "Quality review", Type: "Template", Topic: "Assessment"}
	assert.True(t, Matches(r, Selection{Search: "review"}))
	assert.False(t, Matches(r, Selection{Search: "template"}), "type is not searched")
}

func TestFilterAllIsIdempotent(t *testing.T) {
	items := fiveArticles()
	none := Filter(items, Selection{})
	all := Filter(items, Selection{Facets: map[string]string{"category": config.All}})
	assert.Equal(t, items, none)
	assert.Equal(t, none, all)

	searched := Filter(items, Selection{Search: "s", Facets: map[string]string{"category": config.All}})
	assert.Equal(t, Filter(items, Selection{Search: "s"}), searched)
}

func TestFilterIsExactConjunction(t *testing.T) {
	items := fiveArticles()
	categories := append(config.DefaultFacets().For(models.TableArticles)[0].Options(), "Unknown")
	searches := []string{"", "a", "ON", "sales", "zzz", "ai"}

	for _, c := range categories {
		for _, s := range searches {
			sel := Selection{Facets: map[string]string{"category": c}, Search: s}
			got := Filter(items, sel)

			in := map[string]bool{}
			for _, g := range got {
				in[g.Key()] = true
			}
			for _, it := range items {
				want := (c == config.All || it.Category == c) && (s == "" || containsFold(it.SearchFields(), s))
				assert.Equal(t, want, in[it.Key()], "category=%q search=%q title=%q", c, s, it.Title)
			}
			assert.LessOrEqual(t, len(got), len(items))
		}
	}
}

func containsFold(fields []string, q string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), strings.ToLower(q)) {
			return true
		}
	}
	return false
}

func TestProjectToolFacetMatchesMembership(t *testing.T) {
	items := []models.Project{
		{ID: uuid.New(), Title: "A", Domain: "Healthcare", Tools: []string{"Rise 360", "Camtasia"}},
		{ID: uuid.New(), Title: "B", Domain: "Healthcare", Tools: []string{"Articulate 360"}},
		{ID: uuid.New(), Title: "C", Domain: "Technology", Tools: []string{"Camtasia"}},
	}
	sel := Selection{Facets: map[string]string{"domain": "Healthcare", "tool": "Camtasia"}}
	got := Filter(items, sel)
	assert.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
}

func TestFilterEmptyInput(t *testing.T) {
	got := Filter([]models.Resource(nil), Selection{Search: "x"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNewSelection(t *testing.T) {
	facets := config.DefaultFacets().For(models.TableProjects)
	params := map[string]string{"domain": "Healthcare", "tool": "", "bogus": "x"}
	sel := NewSelection(facets, func(k string) string { return params[k] }, "rise")

	assert.Equal(t, map[string]string{"domain": "Healthcare"}, sel.Facets)
	assert.Equal(t, "Healthcare", sel.Value("domain"))
	assert.Equal(t, config.All, sel.Value("tool"))
	assert.True(t, sel.Active())
	assert.False(t, Selection{Facets: map[string]string{"domain": config.All}}.Active())
}
