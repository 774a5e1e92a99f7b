package wordsource

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

const defaultBatchSize = 2048

func init() {
	if err := Register("parquet", openParquet); err != nil {
		panic(err)
	}
}

// parquetSource reads one string column of a parquet file
type parquetSource struct {
	path     string
	column   string
	wordCase Case
}

func openParquet(cfg Config) (Source, error) {
	_, uri, err := ParseScheme(cfg.ConnString)
	if err != nil {
		return nil, err
	}

	path, params, err := splitParams(uri, "column")
	if err != nil {
		return nil, err
	}

	column := defaultColumn
	if v, ok := params["column"]; ok {
		column = v
	}

	// fail early on a missing file or column
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("error opening parquet file: %w", err)
	}
	defer rdr.Close()

	if rdr.MetaData().Schema.ColumnIndexByName(column) < 0 {
		return nil, fmt.Errorf("parquet file %s has no column '%s'", path, column)
	}

	return &parquetSource{path: path, column: column, wordCase: cfg.Case}, nil
}

func (s *parquetSource) Words(ctx context.Context, fn func(word string) bool) error {
	rdr, err := file.OpenParquetFile(s.path, true)
	if err != nil {
		return fmt.Errorf("error opening parquet file: %w", err)
	}
	defer rdr.Close()

	var mem = memory.NewGoAllocator()
	reader, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{
		BatchSize: defaultBatchSize,
	}, mem)
	if err != nil {
		return fmt.Errorf("error creating Arrow file reader: %w", err)
	}

	var rgrs []int
	for r := 0; r < rdr.NumRowGroups(); r++ {
		rgrs = append(rgrs, r)
	}

	columns := []int{rdr.MetaData().Schema.ColumnIndexByName(s.column)}
	recordReader, err := reader.GetRecordReader(ctx, columns, rgrs)
	if err != nil {
		return fmt.Errorf("error creating record reader: %w", err)
	}
	defer recordReader.Release()

	for recordReader.Next() {
		if err = ctx.Err(); err != nil {
			return err
		}

		col := recordReader.Record().Column(0)
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				continue
			}

			var w string
			switch values := col.(type) {
			case *array.String:
				w = values.Value(i)
			case *array.LargeString:
				w = values.Value(i)
			case *array.Binary:
				w = string(values.Value(i))
			default:
				return fmt.Errorf("parquet column '%s' has type %s, expected a string", s.column, col.DataType())
			}

			if !fn(s.wordCase.Normalize(w)) {
				return nil
			}
		}
	}

	// the record reader reports io.EOF once every row group is consumed
	if err = recordReader.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("error reading parquet file %s: %w", s.path, err)
	}

	return nil
}

func (s *parquetSource) Close() error {
	return nil
}
