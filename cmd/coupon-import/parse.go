package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/panel-storefront/internal/domain/coupon"
)

// scanFile opens path, transparently decompressing .gz files, and calls fn
// for every coupon line.
func scanFile(ctx context.Context, path string, fn func(coupon.Rule)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrap(err, "create gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	return parse(ctx, r, fn)
}

// parse reads "CODE RATE [DESCRIPTION]" lines. Blank lines and lines starting
// with '#' are skipped. Codes are normalized; rates are fractions of the
// subtotal, e.g. 0.15.
func parse(ctx context.Context, r io.Reader, fn func(coupon.Rule)) error {
	var lineNum int

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNum++

		rule, ok, err := parseLine(scanner.Text())
		if err != nil {
			return errors.Wrapf(err, "line %d", lineNum)
		}
		if ok {
			fn(rule)
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "scan")
	}
	return nil
}

func parseLine(line string) (coupon.Rule, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return coupon.Rule{}, false, nil
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return coupon.Rule{}, false, errors.Errorf("expected CODE RATE, got %q", line)
	}

	rate, err := decimal.NewFromString(fields[1])
	if err != nil {
		return coupon.Rule{}, false, errors.Wrapf(err, "parse rate %q", fields[1])
	}

	rule := coupon.Rule{
		Code:        coupon.Normalize(fields[0]),
		Rate:        rate,
		Description: strings.Join(fields[2:], " "),
	}
	if err := rule.Validate(); err != nil {
		return coupon.Rule{}, false, err
	}
	return rule, true, nil
}
