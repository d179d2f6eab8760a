package utils

import (
	"golang.org/x/sync/errgroup"
)

const SpoofedUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func Filter[A any](arr []A, f func(A) bool) []A {
	res := make([]A, 0)
	for _, v := range arr {
		if f(v) {
			res = append(res, v)
		}
	}
	return res
}

// ParallelMap runs f over items with at most limit calls in flight and
// concatenates the outputs in input order. Failed items contribute nothing;
// their errors are returned alongside, also in input order.
func ParallelMap[A, B any](items []A, limit int, f func(A) ([]B, error)) ([]B, []error) {
	outs := make([][]B, len(items))
	errs := make([]error, len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			outs[i], errs[i] = f(item)
			return nil
		})
	}
	_ = g.Wait()

	var res []B
	var failed []error
	for i := range items {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		res = append(res, outs[i]...)
	}
	return res, failed
}
