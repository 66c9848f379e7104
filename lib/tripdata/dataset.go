package tripdata

import (
	"fmt"
	"net/url"

	"github.com/artie-labs/ingest/lib/stringutil"
)

type Dataset string

const (
	FHV    Dataset = "fhv"
	Green  Dataset = "green"
	Yellow Dataset = "yellow"
)

func (d Dataset) IsValid() bool {
	return d == FHV || d == Green || d == Yellow
}

type Extension string

const (
	CSVGzip Extension = ".csv.gz"
	Parquet Extension = ".parquet"
)

// FileName - fhv_tripdata_2019-03.csv.gz
func FileName(dataset Dataset, year int, month Month, ext Extension) string {
	return fmt.Sprintf("%s_tripdata_%d-%s%s", dataset, year, month, ext)
}

// ObjectKey - the deterministic object store path for a month, e.g. fhv/2019/fhv_tripdata_2019-03.csv.gz
func ObjectKey(dataset Dataset, year int, month Month, ext Extension) string {
	return fmt.Sprintf("%s/%d/%s", dataset, year, FileName(dataset, year, month, ext))
}

// SourceURL joins [baseURL] and [fileName] with a slash between them.
func SourceURL(baseURL, fileName string) (string, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	return stringutil.EnsureSuffix(baseURL, "/") + fileName, nil
}
