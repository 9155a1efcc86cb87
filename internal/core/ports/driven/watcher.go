package driven

import "context"

// DirectoryWatcher reports files that appear in a directory.
type DirectoryWatcher interface {
	// Watch emits the path of each file created or rewritten in dir once it
	// has stopped changing. Both channels are closed when ctx is cancelled.
	Watch(ctx context.Context, dir string) (<-chan string, <-chan error, error)
}
