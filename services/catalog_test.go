package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipx_go/models"
)

func sampleCatalog() []models.Equipment {
	return []models.Equipment{
		{ID: "1", Name: "Stethoscope - Cardiology Grade", Status: models.ConditionNew, Price: 120, Seller: "Dr. Ada"},
		{ID: "2", Name: "Hospital Bed", Status: models.ConditionUsed, Price: 800, Seller: "City Clinic"},
		{ID: "3", Name: "Wheelchair", Status: models.ConditionUsed, Price: 150, Seller: "Dr. Ada"},
		{ID: "4", Name: "Blood Pressure Monitor", Status: models.ConditionUnused, Price: 60, Seller: "MedSupply"},
		{ID: "5", Name: "Crutches", Status: models.ConditionUsed, Price: 150, Seller: "Stetho Store"},
	}
}

func ids(items []models.Equipment) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestSearchMatchesCaseInsensitively(t *testing.T) {
	catalog := []models.Equipment{
		{ID: "1", Name: "Stethoscope - Cardiology Grade", Status: models.ConditionNew, Price: 120},
		{ID: "2", Name: "Hospital Bed", Status: models.ConditionUsed, Price: 800},
	}
	got := FilterCatalog(catalog, CatalogQuery{Search: "stethoscope"})
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestSearchMatchesSellerName(t *testing.T) {
	got := FilterCatalog(sampleCatalog(), CatalogQuery{Search: "DR. ADA"})
	assert.Equal(t, []string{"1", "3"}, ids(got))

	// 名称或卖家任一匹配即可
	got = FilterCatalog(sampleCatalog(), CatalogQuery{Search: "stetho"})
	assert.Equal(t, []string{"1", "5"}, ids(got))
}

func TestFiltersAreOrderIndependent(t *testing.T) {
	catalog := sampleCatalog()
	search := CatalogQuery{Search: "dr"}
	condition := CatalogQuery{Condition: string(models.ConditionUsed)}
	sorted := CatalogQuery{PriceSort: PriceSortDesc}

	combined := FilterCatalog(catalog, CatalogQuery{Search: "dr", Condition: "used", PriceSort: PriceSortDesc})

	orders := [][]CatalogQuery{
		{search, condition, sorted},
		{condition, search, sorted},
		{sorted, condition, search},
		{sorted, search, condition},
		{condition, sorted, search},
	}
	for _, order := range orders {
		result := catalog
		for _, q := range order {
			result = FilterCatalog(result, q)
		}
		assert.ElementsMatch(t, ids(combined), ids(result))
	}
	assert.ElementsMatch(t, []string{"3"}, ids(combined))
}

func TestPriceSortIsStable(t *testing.T) {
	asc := FilterCatalog(sampleCatalog(), CatalogQuery{PriceSort: PriceSortAsc})
	assert.Equal(t, []string{"4", "1", "3", "5", "2"}, ids(asc))

	desc := FilterCatalog(sampleCatalog(), CatalogQuery{PriceSort: ParsePriceSort("high-low")})
	assert.Equal(t, []string{"2", "3", "5", "1", "4"}, ids(desc))
}

func TestParsePriceSort(t *testing.T) {
	assert.Equal(t, PriceSortAsc, ParsePriceSort("low-high"))
	assert.Equal(t, PriceSortAsc, ParsePriceSort("ASC"))
	assert.Equal(t, PriceSortDesc, ParsePriceSort("high-low"))
	assert.Equal(t, PriceSortNone, ParsePriceSort(""))
	assert.Equal(t, PriceSortNone, ParsePriceSort("random"))
}

func TestFilterCatalogDoesNotMutateInput(t *testing.T) {
	catalog := sampleCatalog()
	FilterCatalog(catalog, CatalogQuery{PriceSort: PriceSortDesc})
	assert.Equal(t, sampleCatalog(), catalog)
}

func TestCatalogFilterResetsIndependently(t *testing.T) {
	catalog := sampleCatalog()
	f := NewCatalogFilter()
	assert.Len(t, f.Apply(catalog), len(catalog))

	f.SetSearch("dr")
	f.SetCondition("used")
	f.SetPriceSort(PriceSortAsc)
	assert.Equal(t, []string{"3"}, ids(f.Apply(catalog)))

	// 清除搜索后从未过滤的目录重新计算
	f.ClearSearch()
	assert.Equal(t, []string{"3", "5", "2"}, ids(f.Apply(catalog)))

	f.ClearCondition()
	assert.Equal(t, []string{"4", "1", "3", "5", "2"}, ids(f.Apply(catalog)))

	f.ClearPriceSort()
	assert.Equal(t, ids(catalog), ids(f.Apply(catalog)))

	f.SetSearch("bed")
	f.Reset()
	assert.Equal(t, CatalogQuery{Condition: ConditionAll, PriceSort: PriceSortNone}, f.Query())
}

func TestManagerSearch(t *testing.T) {
	m := NewListingManager(newFakeProducts(), staticAccount{user: buyer}, nil)
	require.NoError(t, m.replace(sampleCatalog(), "test", ""))

	got := m.Search(CatalogQuery{Condition: "unused"})
	assert.Equal(t, []string{"4"}, ids(got))
}
