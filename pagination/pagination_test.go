package pagination

import (
	"net/url"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID     uint
	Name   string
	Weight int64
	Active bool
}

var widgetFields = Fields{
	"name":   {Column: "name", Kind: String},
	"weight": {Column: "weight", Kind: Int},
	"active": {Column: "active", Kind: Bool},
}

func setupWidgets(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&widget{}))
	widgets := []widget{
		{Name: "alpha", Weight: 5, Active: true},
		{Name: "beta", Weight: 10, Active: false},
		{Name: "gamma", Weight: 15, Active: true},
		{Name: "delta", Weight: 20, Active: true},
		{Name: "alphabet", Weight: 25, Active: false},
	}
	require.NoError(t, db.Create(&widgets).Error)
	return db
}

func TestParse_Defaults(t *testing.T) {
	p, err := Parse(url.Values{}, widgetFields)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultSize, p.Size)
	assert.Empty(t, p.Filters)
	assert.Empty(t, p.Sorts)
}

func TestParse_FiltersAndSorts(t *testing.T) {
	values := url.Values{
		"page":        {"2"},
		"size":        {"10"},
		"weight__gte": {"10"},
		"name":        {"beta"},
		"sort":        {"weight__desc,name"},
	}
	p, err := Parse(values, widgetFields)
	require.NoError(t, err)

	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 10, p.Size)
	assert.Equal(t, []Sort{{Field: "weight", Desc: true}, {Field: "name"}}, p.Sorts)
	assert.ElementsMatch(t, []Filter{
		{Field: "weight", Op: "gte", Value: int64(10)},
		{Field: "name", Op: "eq", Value: "beta"},
	}, p.Filters)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		target error
	}{
		{"unknown field", url.Values{"password": {"x"}}, ErrUnknownField},
		{"unknown operator", url.Values{"weight__between": {"1"}}, ErrUnknownOperator},
		{"bad int", url.Values{"weight__gt": {"heavy"}}, ErrInvalidValue},
		{"bad page", url.Values{"page": {"0"}}, ErrInvalidValue},
		{"size too large", url.Values{"size": {"1000"}}, ErrInvalidValue},
		{"unknown sort field", url.Values{"sort": {"secret__asc"}}, ErrUnknownField},
		{"bad sort direction", url.Values{"sort": {"name__up"}}, ErrUnknownOperator},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.values, widgetFields)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestPaginate_FilterSortAndPage(t *testing.T) {
	db := setupWidgets(t)

	p, err := Parse(url.Values{
		"active": {"true"},
		"sort":   {"weight__desc"},
		"size":   {"2"},
	}, widgetFields)
	require.NoError(t, err)

	page, err := Paginate[widget](db, p, widgetFields)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "delta", page.Items[0].Name)
	assert.Equal(t, "gamma", page.Items[1].Name)

	p.Page = 2
	page, err = Paginate[widget](db, p, widgetFields)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alpha", page.Items[0].Name)
}

func TestPaginate_LikeAndIn(t *testing.T) {
	db := setupWidgets(t)

	p, err := Parse(url.Values{"name__like": {"alph"}}, widgetFields)
	require.NoError(t, err)
	page, err := Paginate[widget](db, p, widgetFields)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	p, err = Parse(url.Values{"weight__in": {"5, 15,25"}}, widgetFields)
	require.NoError(t, err)
	page, err = Paginate[widget](db, p, widgetFields)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
}

func TestPaginate_EmptyResultHasEmptySlice(t *testing.T) {
	db := setupWidgets(t)

	p, err := Parse(url.Values{"name": {"zeta"}}, widgetFields)
	require.NoError(t, err)
	page, err := Paginate[widget](db, p, widgetFields)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Pages)
}
