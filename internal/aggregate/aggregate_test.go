package aggregate

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/awards-crawler/internal/award"
	"github.com/JakeFAU/awards-crawler/internal/normalize"
	"github.com/JakeFAU/awards-crawler/internal/registry"
)

func newAggregator(t *testing.T) *Aggregator {
	t.Helper()
	reg := registry.Default()
	n, err := normalize.New(normalize.Config{Synonyms: reg.Synonyms, SiteOfTheYearAliases: reg.SiteOfTheYearAliases})
	require.NoError(t, err)
	return New(n)
}

func rec(year int, category, project string, rank int) award.Record {
	return award.Record{Year: year, Company: project, Category: category, Project: project, Rank: rank}
}

func TestAggregateSeedWinsDuplicate(t *testing.T) {
	t.Parallel()

	seed := []award.Record{{Year: 2018, Company: "City of Perth", Agency: "Equilibrium", Category: "Site of the Year", Project: "City of Perth", Rank: 1}}
	scraped := []award.Record{{Year: 2018, Company: "City of Perth", Agency: "", Category: "McFarlane Prize", Project: "City of Perth", Rank: 1}}

	got := newAggregator(t).Aggregate(seed, scraped)
	require.Len(t, got, 1)
	assert.Equal(t, "Equilibrium", got[0].Agency)
	assert.Equal(t, "Site of the Year", got[0].Category)
}

func TestAggregateKeepsSeedVerbatim(t *testing.T) {
	t.Parallel()

	seed := registry.Seed(true)
	want := make([]award.Record, len(seed))
	copy(want, seed)
	sort.SliceStable(want, func(i, j int) bool { return less(want[i], want[j]) })

	got := newAggregator(t).Aggregate(seed, nil)
	assert.Equal(t, want, got)

	categories := make(map[string]bool)
	for _, r := range got {
		categories[r.Category] = true
	}
	assert.True(t, categories["Agency of the Year"])
	assert.True(t, categories["McFarlane Prize (Site of the Year)"])
	assert.False(t, categories["E-Commerce"], "curated labels are not canonicalised")
}

func TestAggregateDropsUnpublishableSeed(t *testing.T) {
	t.Parallel()

	seed := []award.Record{
		rec(0, "Education", "Context Only", 1),
		rec(2020, " ", "Blank", 1),
		rec(2020, "eCommerce", "Koala", 1),
	}
	got := newAggregator(t).Aggregate(seed, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "eCommerce", got[0].Category)
}

func TestAggregateLowerRankWinsDuplicate(t *testing.T) {
	t.Parallel()

	seed := []award.Record{rec(2020, "Education", "Happy Hearts", 2)}
	scraped := []award.Record{rec(2020, "Education", "Happy Hearts", 1)}

	got := newAggregator(t).Aggregate(seed, scraped)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Rank)
}

func TestAggregateExclusions(t *testing.T) {
	t.Parallel()

	scraped := []award.Record{
		rec(0, "Education", "Context Only", 1),
		rec(2021, "Sponsors", "Acme", 1),
		rec(2021, "  ", "Blank", 1),
		rec(2021, "eCommerce", "Koala", 1),
	}
	got := newAggregator(t).Aggregate(nil, scraped)
	require.Len(t, got, 1)
	assert.Equal(t, "E-Commerce", got[0].Category)
	for _, r := range got {
		assert.NotZero(t, r.Year)
		assert.NotEmpty(t, r.Category)
	}
}

func TestAggregateSortOrder(t *testing.T) {
	t.Parallel()

	scraped := []award.Record{
		rec(2019, "Government", "B", 2),
		rec(2024, "Agency", "Humaan", 1),
		rec(2019, "Education", "C", 3),
		rec(2019, "Government", "A", 1),
		rec(2022, "Zoo", "Z", 1),
	}
	got := newAggregator(t).Aggregate(nil, scraped)
	var order []string
	for _, r := range got {
		order = append(order, r.Project)
	}
	assert.Equal(t, []string{"Humaan", "Z", "C", "A", "B"}, order)

	for i := 1; i < len(got); i++ {
		assert.False(t, less(got[i], got[i-1]), "record %d sorts before its predecessor", i)
	}
}

func TestAggregateUniqueKeys(t *testing.T) {
	t.Parallel()

	a := newAggregator(t)
	got := a.Aggregate(registry.Seed(true), registry.Seed(true))
	seen := make(map[award.Key]bool)
	for _, r := range got {
		assert.False(t, seen[r.Key()], "duplicate key %+v", r.Key())
		seen[r.Key()] = true
	}
}

func TestAggregateDeterministic(t *testing.T) {
	t.Parallel()

	a := newAggregator(t)
	seed := registry.Seed(true)
	scraped := []award.Record{
		rec(2023, "Government", "City of Perth", 1),
		rec(2023, "Government", "City of Perth", 1),
		rec(2023, "Not-for-profit", "Beyond Blue", 2),
	}
	first := a.Aggregate(seed, scraped)
	second := a.Aggregate(seed, scraped)
	assert.Equal(t, first, second)

	// Same multiset in a different order yields the same keys.
	shuffled := append([]award.Record(nil), scraped...)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	third := a.Aggregate(seed, shuffled)
	require.Len(t, third, len(first))
	for i := range first {
		assert.Equal(t, first[i].Key(), third[i].Key())
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	scraped := []award.Record{rec(2021, "eCommerce", "Koala", 1)}
	scraped[0].Technologies = []string{"Shopify"}
	got := newAggregator(t).Aggregate(nil, scraped)
	got[0].Technologies[0] = "changed"
	assert.Equal(t, "eCommerce", scraped[0].Category)
	assert.Equal(t, "Shopify", scraped[0].Technologies[0])
}

func TestPartition(t *testing.T) {
	t.Parallel()

	records := newAggregator(t).Aggregate(nil, []award.Record{
		rec(2024, "Agency", "Humaan", 1),
		rec(2024, "Agency", "Sod", 2),
		rec(2024, "Education", "Happy Hearts", 1),
		rec(2023, "Government", "City of Perth", 1),
	})
	groups := Partition(records)
	require.Len(t, groups, 2)
	assert.Equal(t, 2024, groups[0].Year)
	assert.Equal(t, 3, groups[0].Count())
	require.Len(t, groups[0].Categories, 2)
	assert.Equal(t, "Agency", groups[0].Categories[0].Name)
	assert.Len(t, groups[0].Categories[0].Records, 2)
	assert.Equal(t, 2023, groups[1].Year)

	assert.Empty(t, Partition(nil))
}

func TestCategories(t *testing.T) {
	t.Parallel()

	got := Categories([]award.Record{
		rec(2024, "Government", "a", 1),
		rec(2023, "Agency", "b", 1),
		rec(2022, "Government", "c", 1),
	})
	assert.Equal(t, []string{"Agency", "Government"}, got)
}

func TestLabel(t *testing.T) {
	t.Parallel()

	a := newAggregator(t)
	assert.Equal(t, "E-Commerce", a.Label(" eCommerce "))
	assert.Equal(t, "", a.Label("Our Sponsors"))

	bare := New(nil)
	assert.Equal(t, "Site of the Year", bare.Label("  Site  of the Year "))
}
