// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		page  int
		limit int
	}{
		{"defaults", "", pagination.DefaultPage, pagination.DefaultLimit},
		{"explicit", "?page=3&limit=5", 3, 5},
		{"negative_page", "?page=-1", pagination.DefaultPage, pagination.DefaultLimit},
		{"garbage", "?page=abc&limit=xyz", pagination.DefaultPage, pagination.DefaultLimit},
		{"limit_clamped", "?limit=1000", pagination.DefaultPage, pagination.MaxLimit},
		{"page_clamped", "?page=922337203685477580&limit=100", pagination.MaxPage, pagination.MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/api/v1/titles"+tt.query, nil)
			params := pagination.FromRequest(request)

			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.limit, params.Limit)
		})
	}
}

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, pagination.Params{Page: 3, Limit: 10}.Offset())
}

func TestParams_Offset_HugePageStaysPositive(t *testing.T) {
	request := httptest.NewRequest("GET", "/api/v1/titles?page=922337203685477580&limit=100", nil)
	params := pagination.FromRequest(request)

	assert.Equal(t, (pagination.MaxPage-1)*pagination.MaxLimit, params.Offset())
	assert.Positive(t, params.Offset())
}

func TestNewPage_Links(t *testing.T) {
	request := httptest.NewRequest("GET", "http://api.test/api/v1/genres?search=dr&page=2&limit=2", nil)
	params := pagination.FromRequest(request)

	page := pagination.NewPage(request, params, []string{"c", "d"}, 5)

	assert.Equal(t, 5, page.Count)
	assert.Equal(t, []string{"c", "d"}, page.Results)

	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=3")
	assert.Contains(t, *page.Next, "search=dr")

	require.NotNil(t, page.Previous)
	assert.Contains(t, *page.Previous, "page=1")
}

func TestNewPage_SinglePage(t *testing.T) {
	request := httptest.NewRequest("GET", "/api/v1/genres", nil)
	params := pagination.FromRequest(request)

	page := pagination.NewPage[string](request, params, nil, 0)

	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
}
