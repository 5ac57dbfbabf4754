package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 5, TotalPages(47, 10))
	assert.Equal(t, 20, TotalPages(200, 10))
}

func TestPageWindow(t *testing.T) {
	testCases := []struct {
		name        string
		totalPages  int
		currentPage int
		expected    []int
	}{
		{"fewer pages than window", 3, 2, []int{1, 2, 3}},
		{"exactly five pages", 5, 3, []int{1, 2, 3, 4, 5}},
		{"near the start", 20, 2, []int{1, 2, 3, 4, 5}},
		{"start boundary", 20, 3, []int{1, 2, 3, 4, 5}},
		{"middle", 20, 10, []int{8, 9, 10, 11, 12}},
		{"near the end", 20, 18, []int{16, 17, 18, 19, 20}},
		{"last page", 20, 20, []int{16, 17, 18, 19, 20}},
		{"single page", 1, 1, []int{1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, PageWindow(tc.totalPages, tc.currentPage))
		})
	}
}

func TestPageWindowFortySevenRows(t *testing.T) {
	totalPages := TotalPages(47, 10)
	assert.Equal(t, 5, totalPages)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, PageWindow(totalPages, 3))
}

func TestPageWindowTwoHundredRowsPageTwelve(t *testing.T) {
	// currentPage 12 is not yet in the tail (totalPages-2 = 18), so the
	// window centers on it
	totalPages := TotalPages(200, 10)
	assert.Equal(t, 20, totalPages)
	assert.Equal(t, []int{10, 11, 12, 13, 14}, PageWindow(totalPages, 12))
}

func TestPagerPageChangeClamping(t *testing.T) {
	p := NewPager()
	p.SetTotalCount(47)

	p.HandlePageChange(3)
	assert.Equal(t, 3, p.CurrentPage())

	// Out-of-range requests leave the page unchanged
	p.HandlePageChange(0)
	assert.Equal(t, 3, p.CurrentPage())
	p.HandlePageChange(6)
	assert.Equal(t, 3, p.CurrentPage())
	p.HandlePageChange(-1)
	assert.Equal(t, 3, p.CurrentPage())
}

func TestPagerFilterResetsPage(t *testing.T) {
	p := NewPager()
	p.SetTotalCount(200)
	p.HandlePageChange(12)
	assert.Equal(t, 12, p.CurrentPage())

	p.SetFlaggedOnly(true)
	assert.Equal(t, 1, p.CurrentPage())
	assert.True(t, p.FlaggedOnly())

	p.HandlePageChange(5)
	p.SetFlaggedOnly(false)
	assert.Equal(t, 1, p.CurrentPage())
}

func TestPagerShrinkingCollectionClampsPage(t *testing.T) {
	p := NewPager()
	p.SetTotalCount(200)
	p.HandlePageChange(20)

	p.SetTotalCount(47)
	assert.Equal(t, 5, p.CurrentPage())
}

func TestPagerOffset(t *testing.T) {
	p := NewPager()
	p.SetTotalCount(100)
	assert.Equal(t, 0, p.Offset())

	p.HandlePageChange(4)
	assert.Equal(t, 30, p.Offset())
}
