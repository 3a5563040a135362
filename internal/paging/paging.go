// Package paging splits ordered lists into 1-based pages.
package paging

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned for a page beyond the last one.
var ErrOutOfRange = errors.New("page out of range")

// Page is one page of items.
type Page[T any] struct {
	Items  []T
	Number int // 1-based
	Total  int
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool {
	return p.Number < p.Total
}

// Split cuts items into pages of at most perPage. perPage < 1 counts as 1.
// An empty input has no pages.
func Split[T any](items []T, perPage int) [][]T {
	if perPage < 1 {
		perPage = 1
	}
	if len(items) == 0 {
		return nil
	}
	pages := make([][]T, 0, (len(items)+perPage-1)/perPage)
	for start := 0; start < len(items); start += perPage {
		end := min(start+perPage, len(items))
		pages = append(pages, items[start:end:end])
	}
	return pages
}

// Get returns page number of items. Numbers below 1 mean the first page.
func Get[T any](items []T, perPage, number int) (Page[T], error) {
	return FromPages(Split(items, perPage), number)
}

// FromPages picks a page from an already split list.
func FromPages[T any](pages [][]T, number int) (Page[T], error) {
	if number < 1 {
		number = 1
	}
	if number > len(pages) {
		return Page[T]{Number: number, Total: len(pages)}, fmt.Errorf("page %d of %d: %w", number, len(pages), ErrOutOfRange)
	}
	return Page[T]{Items: pages[number-1], Number: number, Total: len(pages)}, nil
}
