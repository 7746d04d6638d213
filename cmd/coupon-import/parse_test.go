package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/panel-storefront/internal/domain/coupon"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    coupon.Rule
		ok      bool
		wantErr bool
	}{
		{name: "blank", line: "   "},
		{name: "comment", line: "# code rate"},
		{
			name: "code and rate",
			line: "ramadan 0.15",
			want: coupon.Rule{Code: "RAMADAN", Rate: decimal.RequireFromString("0.15")},
			ok:   true,
		},
		{
			name: "with description",
			line: "  PANEL25 0.25 Diskon panel 25%  ",
			want: coupon.Rule{Code: "PANEL25", Rate: decimal.RequireFromString("0.25"), Description: "Diskon panel 25%"},
			ok:   true,
		},
		{name: "missing rate", line: "LONELY", wantErr: true},
		{name: "bad rate", line: "CODE ten", wantErr: true},
		{name: "rate above one", line: "CODE 1.5", wantErr: true},
		{name: "negative rate", line: "CODE -0.1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := parseLine(tt.line)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want.Code, got.Code)
				assert.True(t, tt.want.Rate.Equal(got.Rate))
				assert.Equal(t, tt.want.Description, got.Description)
			}
		})
	}
}

func TestParseReportsLine(t *testing.T) {
	var got []coupon.Rule
	err := parse(context.Background(), strings.NewReader("A 0.1\n\nB nope\n"), func(r coupon.Rule) {
		got = append(got, r)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Equal(t, []string{"A"}, codes(got))
}

func writeFile(t *testing.T, name string, lines ...string) string {
	t.Helper()

	data := []byte(strings.Join(lines, "\n") + "\n")
	path := filepath.Join(t.TempDir(), name)
	if strings.HasSuffix(name, ".gz") {
		var buf bytes.Buffer
		gz := pgzip.NewWriter(&buf)
		_, err := gz.Write(data)
		require.NoError(t, err)
		require.NoError(t, gz.Close())
		data = buf.Bytes()
	}
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func rule(code, rate string) coupon.Rule {
	return coupon.Rule{Code: code, Rate: decimal.RequireFromString(rate)}
}

func codes(rules []coupon.Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.Code
	}
	return out
}

func TestScanFileGzip(t *testing.T) {
	var got []coupon.Rule
	path := writeFile(t, "coupons.gz", "first 0.1", "second 0.2 Diskon")
	require.NoError(t, scanFile(context.Background(), path, func(r coupon.Rule) {
		got = append(got, r)
	}))
	assert.Equal(t, []string{"FIRST", "SECOND"}, codes(got))
	assert.Equal(t, "Diskon", got[1].Description)
}

func TestDedupeMissingFile(t *testing.T) {
	_, _, err := dedupe(context.Background(), []string{filepath.Join(t.TempDir(), "nope.gz")}, 100)
	assert.Error(t, err)
}

func TestDedupe(t *testing.T) {
	a := writeFile(t, "a.gz", "A 0.1", "B 0.2", "B 0.25")
	b := writeFile(t, "b.txt", "C 0.3", "A 0.5")

	rules, stats, err := dedupe(context.Background(), []string{a, b}, 1000)
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "A", "B"}, codes(rules), "unique first, then candidates")
	assert.True(t, rules[1].Rate.Equal(decimal.RequireFromString("0.5")), "later occurrence wins")
	assert.True(t, rules[2].Rate.Equal(decimal.RequireFromString("0.25")))
	assert.Equal(t, dedupeStats{Unique: 1, Candidates: 2, Duplicates: 2}, stats)
}

func TestDedupeCandidatesStayBounded(t *testing.T) {
	var first, second []string
	for i := range 500 {
		first = append(first, fmt.Sprintf("ALPHA%04d 0.1", i))
		second = append(second, fmt.Sprintf("BETA%04d 0.1", i))
	}
	// Three codes repeat: one across files, one within a file, one in both.
	first = append(first, "SHARED 0.1", "TWICE 0.1", "TWICE 0.2", "BOTH 0.1")
	second = append(second, "SHARED 0.3", "BOTH 0.4")

	a := writeFile(t, "first.gz", first...)
	b := writeFile(t, "second.txt", second...)

	rules, stats, err := dedupe(context.Background(), []string{a, b}, 100_000)
	require.NoError(t, err)

	assert.Len(t, rules, 1003)
	assert.Equal(t, 1000, stats.Unique)
	assert.Equal(t, 3, stats.Candidates, "exact set holds only the repeated codes")
	assert.Equal(t, 3, stats.Duplicates)

	byCode := make(map[string]coupon.Rule, len(rules))
	for _, r := range rules {
		_, dup := byCode[r.Code]
		require.False(t, dup, r.Code)
		byCode[r.Code] = r
	}
	assert.True(t, byCode["SHARED"].Rate.Equal(decimal.RequireFromString("0.3")))
	assert.True(t, byCode["TWICE"].Rate.Equal(decimal.RequireFromString("0.2")))
	assert.True(t, byCode["BOTH"].Rate.Equal(decimal.RequireFromString("0.4")))
}

func TestDedupeEmpty(t *testing.T) {
	path := writeFile(t, "empty.txt", "# nothing here")
	rules, stats, err := dedupe(context.Background(), []string{path}, 10)
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.Zero(t, stats)
}

type mockUpserter struct {
	mu      sync.Mutex
	batches [][]coupon.Rule
	err     error
}

func (m *mockUpserter) Upsert(_ context.Context, rules []coupon.Rule) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.batches = append(m.batches, rules)
	return int64(len(rules)), nil
}

func TestWriteCouponsChunks(t *testing.T) {
	var rules []coupon.Rule
	for _, c := range []string{"A", "B", "C", "D", "E"} {
		rules = append(rules, rule(c, "0.1"))
	}

	repo := &mockUpserter{}
	require.NoError(t, writeCoupons(context.Background(), repo, rules, 2, 2))

	var total int
	for _, b := range repo.batches {
		assert.LessOrEqual(t, len(b), 2)
		total += len(b)
	}
	assert.Len(t, repo.batches, 3)
	assert.Equal(t, 5, total)
}

func TestWriteCouponsError(t *testing.T) {
	repo := &mockUpserter{err: errors.New("connection reset")}
	err := writeCoupons(context.Background(), repo, []coupon.Rule{rule("A", "0.1")}, 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
