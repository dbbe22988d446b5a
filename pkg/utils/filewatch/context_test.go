package filewatch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opst/dmcatalog/pkg/utils/filewatch"
)

func setup(t *testing.T) (dir string, file string) {
	t.Helper()
	dir = t.TempDir()
	file = filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(file, []byte("storage:\n  backend: memory\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, file
}

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context is not canceled")
	}
	if cause := context.Cause(ctx); !errors.Is(cause, filewatch.ErrChanged) {
		t.Errorf("unexpected cause: %v", cause)
	}
}

func TestUntilChanged(t *testing.T) {
	for name, change := range map[string]func(t *testing.T, dir, file string){
		"written": func(t *testing.T, _, file string) {
			if err := os.WriteFile(file, []byte("storage:\n  backend: postgres\n"), 0644); err != nil {
				t.Fatal(err)
			}
		},
		"removed": func(t *testing.T, _, file string) {
			if err := os.Remove(file); err != nil {
				t.Fatal(err)
			}
		},
		"replaced by rename": func(t *testing.T, dir, file string) {
			tmp := filepath.Join(dir, "config.yaml.tmp")
			if err := os.WriteFile(tmp, []byte("loglevel: debug\n"), 0644); err != nil {
				t.Fatal(err)
			}
			if err := os.Rename(tmp, file); err != nil {
				t.Fatal(err)
			}
		},
	} {
		t.Run("when the file is "+name+", it cancels context", func(t *testing.T) {
			dir, file := setup(t)
			ctx, cancel, err := filewatch.UntilChanged(context.Background(), file)
			if err != nil {
				t.Fatal(err)
			}
			defer cancel()
			if err := ctx.Err(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			change(t, dir, file)
			waitDone(t, ctx)
		})
	}

	t.Run("changes of other files do not cancel context", func(t *testing.T) {
		dir, file := setup(t)
		ctx, cancel, err := filewatch.UntilChanged(context.Background(), file)
		if err != nil {
			t.Fatal(err)
		}
		defer cancel()

		if err := os.WriteFile(filepath.Join(dir, "other"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chmod(file, 0o600); err != nil {
			t.Fatal(err)
		}
		select {
		case <-ctx.Done():
			t.Fatalf("context is canceled: %v", context.Cause(ctx))
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("it fails for a file in a missing directory", func(t *testing.T) {
		_, _, err := filewatch.UntilChanged(context.Background(), filepath.Join(t.TempDir(), "nowhere", "config.yaml"))
		if err == nil {
			t.Error("expected error, but got nil")
		}
	})

	t.Run("cancel function stops watching", func(t *testing.T) {
		_, file := setup(t)
		ctx, cancel, err := filewatch.UntilChanged(context.Background(), file)
		if err != nil {
			t.Fatal(err)
		}
		cancel()
		<-ctx.Done()
		if cause := context.Cause(ctx); !errors.Is(cause, context.Canceled) {
			t.Errorf("unexpected cause: %v", cause)
		}
	})
}
