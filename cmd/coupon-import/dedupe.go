package main

import (
	"context"
	"log/slog"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/panel-storefront/internal/domain/coupon"
)

const bloomFPR = 0.001

// fileFilter is the pass 1 summary of one file: a bloom filter of its codes
// and the codes that hit the filter again within the same file.
type fileFilter struct {
	filter  *bloom.BloomFilter
	repeats map[string]struct{}
}

// fileResult is the pass 2 split of one file. Unique rules hit no filter and
// cannot repeat anywhere; candidates may.
type fileResult struct {
	unique     []coupon.Rule
	candidates []coupon.Rule
}

type dedupeStats struct {
	Unique     int
	Candidates int
	Duplicates int
}

// dedupe reads files twice. Pass 1 builds one bloom filter per file
// concurrently. Pass 2 re-reads each file and sets aside only the codes that
// hit a filter, so exact bookkeeping is bounded by the candidates rather
// than the input. A later occurrence of a code replaces the earlier one.
func dedupe(ctx context.Context, files []string, expected uint) ([]coupon.Rule, dedupeStats, error) {
	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildFilters(ctx, files, expected)
	if err != nil {
		return nil, dedupeStats{}, errors.Wrap(err, "build bloom filters")
	}

	slog.Info("pass 2: splitting candidate duplicates")

	results, err := splitCandidates(ctx, files, filters)
	if err != nil {
		return nil, dedupeStats{}, errors.Wrap(err, "split candidates")
	}

	rules, stats := merge(results)
	return rules, stats, nil
}

func buildFilters(ctx context.Context, files []string, expected uint) ([]fileFilter, error) {
	filters := make([]fileFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			f := fileFilter{
				filter:  bloom.NewWithEstimates(max(expected, 1), bloomFPR),
				repeats: make(map[string]struct{}),
			}
			var count int
			if err := scanFile(ctx, path, func(r coupon.Rule) {
				count++
				if f.filter.TestAndAddString(r.Code) {
					f.repeats[r.Code] = struct{}{}
				}
			}); err != nil {
				return errors.Wrapf(err, "file %s", path)
			}

			slog.Info("pass 1 complete", slog.String("path", path), slog.Int("coupons", count))
			filters[i] = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

func splitCandidates(ctx context.Context, files []string, filters []fileFilter) ([]fileResult, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			var res fileResult
			if err := scanFile(ctx, path, func(r coupon.Rule) {
				if isCandidate(r.Code, i, filters) {
					res.candidates = append(res.candidates, r)
					return
				}
				res.unique = append(res.unique, r)
			}); err != nil {
				return errors.Wrapf(err, "file %s", path)
			}

			slog.Info("pass 2 complete",
				slog.String("path", path),
				slog.Int("unique", len(res.unique)),
				slog.Int("candidates", len(res.candidates)),
			)
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// isCandidate reports whether code repeated within file idx or may appear in
// any other file.
func isCandidate(code string, idx int, filters []fileFilter) bool {
	if _, ok := filters[idx].repeats[code]; ok {
		return true
	}
	for j, f := range filters {
		if j != idx && f.filter.TestString(code) {
			return true
		}
	}
	return false
}

// merge emits unique rules in file order followed by the candidates, exactly
// deduplicated in first-seen order.
func merge(results []fileResult) ([]coupon.Rule, dedupeStats) {
	var stats dedupeStats
	for _, res := range results {
		stats.Unique += len(res.unique)
	}

	out := make([]coupon.Rule, 0, stats.Unique)
	for _, res := range results {
		out = append(out, res.unique...)
	}

	index := make(map[string]int)
	for _, res := range results {
		for _, r := range res.candidates {
			if i, ok := index[r.Code]; ok {
				out[i] = r
				stats.Duplicates++
				continue
			}
			index[r.Code] = len(out)
			out = append(out, r)
		}
	}
	stats.Candidates = len(index)
	return out, stats
}
