package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Uploader copies a finished export to remote storage and returns the URI of
// the stored object.
type Uploader interface {
	UploadFile(ctx context.Context, filePath string) (string, error)
}

type Options struct {
	API      string
	Out      string
	Client   *http.Client
	Uploader Uploader
	Stdout   io.Writer
}

// Run exports the JSON array served at opts.API to the CSV file opts.Out and
// uploads it when an Uploader is set.
func Run(ctx context.Context, opts Options) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	rows, err := Fetch(ctx, opts.Client, opts.API)
	if err != nil {
		return err
	}

	f, err := os.Create(opts.Out)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}

	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing export file")
	}

	fmt.Fprintln(opts.Stdout, "wrote", opts.Out)

	if opts.Uploader == nil {
		return nil
	}

	uri, err := opts.Uploader.UploadFile(ctx, opts.Out)
	if err != nil {
		return errors.Wrapf(err, "uploading %s", opts.Out)
	}

	fmt.Fprintln(opts.Stdout, "uploaded", uri)
	return nil
}

// Fetch reads a JSON array of objects from api. Numbers keep their textual
// form so ids are not turned into floats.
func Fetch(ctx context.Context, client *http.Client, api string) ([]map[string]interface{}, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("GET %s: unexpected status %s", api, resp.Status)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var rows []map[string]interface{}
	if err := decoder.Decode(&rows); err != nil {
		return nil, errors.Wrapf(err, "GET %s: expected a JSON array of objects", api)
	}

	return rows, nil
}

// WriteCSV writes rows with a header made of the sorted keys of the first
// row. Keys missing from a later row are left empty, extra ones dropped.
func WriteCSV(w io.Writer, rows []map[string]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, 0, len(rows[0]))
	for key := range rows[0] {
		header = append(header, key)
	}
	sort.Strings(header)

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	record := make([]string, len(header))
	for i, row := range rows {
		for j, key := range header {
			value, err := cell(row[key])
			if err != nil {
				return errors.Wrapf(err, "row %d, column %s", i, key)
			}
			record[j] = value
		}

		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "writing row %d", i)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func cell(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}
