package wordsource

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func init() {
	if err := Register("file", openFile); err != nil {
		panic(err)
	}
}

// fileSource reads one word per line
type fileSource struct {
	path     string
	wordCase Case
}

func openFile(cfg Config) (Source, error) {
	_, path, err := ParseScheme(cfg.ConnString)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return nil, fmt.Errorf("empty file path")
	}

	if _, err = os.Stat(path); err != nil {
		return nil, err
	}

	return &fileSource{path: path, wordCase: cfg.Case}, nil
}

func (s *fileSource) Words(ctx context.Context, fn func(word string) bool) error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err = ctx.Err(); err != nil {
			return err
		}
		if !fn(s.wordCase.Normalize(scanner.Text())) {
			return nil
		}
	}

	if err = scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", s.path, err)
	}

	return nil
}

func (s *fileSource) Close() error {
	return nil
}
