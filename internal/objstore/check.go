package objstore

import (
	"context"
	"fmt"
)

// CheckResult describes one checked source.
type CheckResult struct {
	URI     string
	Objects int
	Err     error
}

// OK reports whether the source is usable.
func (r CheckResult) OK() bool {
	return r.Err == nil
}

// CheckPrefix verifies that at least one object lives under the prefix.
func CheckPrefix(ctx context.Context, store Store, uri string) CheckResult {
	objects, err := store.List(ctx, uri)
	if err != nil {
		return CheckResult{URI: uri, Err: err}
	}
	if len(objects) == 0 {
		return CheckResult{URI: uri, Err: fmt.Errorf("no objects found")}
	}
	return CheckResult{URI: uri, Objects: len(objects)}
}

// CheckObject verifies that a single object exists.
func CheckObject(ctx context.Context, store Store, uri string) CheckResult {
	ok, err := store.Exists(ctx, uri)
	if err != nil {
		return CheckResult{URI: uri, Err: err}
	}
	if !ok {
		return CheckResult{URI: uri, Err: fmt.Errorf("object not found")}
	}
	return CheckResult{URI: uri, Objects: 1}
}
