package revision

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeProvider struct {
	tags     []string
	branches []string
	head     string
	err      error
}

func (f *fakeProvider) Tags(_ context.Context, _ string) ([]string, error) {
	return f.tags, f.err
}

func (f *fakeProvider) Branches(_ context.Context, _ string) ([]string, error) {
	return f.branches, f.err
}

func (f *fakeProvider) DefaultBranch(_ context.Context, _ string) (string, error) {
	return f.head, f.err
}

func TestResolve(t *testing.T) {
	provider := &fakeProvider{
		tags:     []string{"v0.1", "v0.2", "v0.3"},
		branches: []string{"main", "v0.3", "feature/oled"},
	}
	r := NewResolver(provider)
	ctx := context.Background()

	t.Run("tag_wins_over_branch", func(t *testing.T) {
		res, err := r.Resolve(ctx, "https://github.com/zmkfirmware/zmk", "v0.3")
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if res.Kind != KindTag || res.Name != "v0.3" {
			t.Errorf("res = %+v, want tag v0.3", res)
		}
	})

	t.Run("branch", func(t *testing.T) {
		res, err := r.Resolve(ctx, "url", "feature/oled")
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if res.Kind != KindBranch {
			t.Errorf("res = %+v, want branch", res)
		}
	})

	t.Run("commit_hash", func(t *testing.T) {
		for _, rev := range []string{"abc1234", "ABC1234", "0123456789abcdef0123456789abcdef01234567"} {
			res, err := r.Resolve(ctx, "url", rev)
			if err != nil {
				t.Errorf("Resolve(%q) error: %v", rev, err)
				continue
			}
			if res.Kind != KindCommit {
				t.Errorf("Resolve(%q) = %+v, want commit", rev, res)
			}
		}
	})

	t.Run("unknown", func(t *testing.T) {
		for _, rev := range []string{"", "v9.9", "abc123", "not_a_ref!"} {
			_, err := r.Resolve(ctx, "url", rev)
			if !errors.Is(err, ErrUnknownRevision) {
				t.Errorf("Resolve(%q) err = %v, want ErrUnknownRevision", rev, err)
			}
		}
	})

	t.Run("provider_error", func(t *testing.T) {
		broken := NewResolver(&fakeProvider{err: errors.New("no network")})
		if _, err := broken.Resolve(ctx, "url", "v0.3"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestLatest(t *testing.T) {
	ctx := context.Background()

	t.Run("highest_version_tag", func(t *testing.T) {
		r := NewResolver(&fakeProvider{tags: []string{"v0.2", "v0.10", "v0.3.1", "v0.3"}})

		res, err := r.Latest(ctx, "url")
		if err != nil {
			t.Fatalf("Latest error: %v", err)
		}
		if res.Name != "v0.10" {
			t.Errorf("Latest = %q, want v0.10", res.Name)
		}
	})

	t.Run("ignores_vendor_tags", func(t *testing.T) {
		r := NewResolver(&fakeProvider{tags: []string{"v0.10", "zephyr-v3.5", "zephyr-v3.11"}})

		res, err := r.Latest(ctx, "url")
		if err != nil {
			t.Fatalf("Latest error: %v", err)
		}
		if res.Name != "v0.10" {
			t.Errorf("Latest = %q, want v0.10", res.Name)
		}
	})

	t.Run("no_tags", func(t *testing.T) {
		r := NewResolver(&fakeProvider{})
		if _, err := r.Latest(ctx, "url"); !errors.Is(err, ErrNoTags) {
			t.Fatalf("err = %v, want ErrNoTags", err)
		}
	})
}

func TestSortTags(t *testing.T) {
	in := []string{"nightly", "v0.2", "zephyr-v3.5", "v0.10", "v0.3"}
	got := SortTags(in)

	want := []string{"v0.10", "v0.3", "v0.2", "zephyr-v3.5", "nightly"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortTags = %v, want %v", got, want)
	}

	if in[0] != "nightly" {
		t.Error("SortTags modified its input")
	}
}
