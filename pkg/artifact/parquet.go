package artifact

import (
	"encoding/json"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

// Row shapes mirror the indexer's create_final_*.parquet schema. List-typed
// columns (findings, entity/text-unit id lists) are stored as JSON-encoded
// string columns rather than nested parquet LIST groups, which keeps the
// reader side a plain flat scan.

type entityRow struct {
	ID              string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	HumanReadableID string `parquet:"name=human_readable_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Title           string `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	Type            string `parquet:"name=type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Description     string `parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8"`
}

type nodeRow struct {
	ID     string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Title  string `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	Degree int64  `parquet:"name=degree, type=INT64"`
}

type relationshipRow struct {
	ID              string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	HumanReadableID string  `parquet:"name=human_readable_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Source          string  `parquet:"name=source, type=BYTE_ARRAY, convertedtype=UTF8"`
	Target          string  `parquet:"name=target, type=BYTE_ARRAY, convertedtype=UTF8"`
	Description     string  `parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8"`
	Weight          float64 `parquet:"name=weight, type=DOUBLE"`
}

type communityReportRow struct {
	ID              string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Community       string  `parquet:"name=community, type=BYTE_ARRAY, convertedtype=UTF8"`
	Level           int64   `parquet:"name=level, type=INT64"`
	Title           string  `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	Rank            float64 `parquet:"name=rank, type=DOUBLE"`
	Rating          float64 `parquet:"name=rating, type=DOUBLE"`
	RankExplanation string  `parquet:"name=rank_explanation, type=BYTE_ARRAY, convertedtype=UTF8"`
	Summary         string  `parquet:"name=summary, type=BYTE_ARRAY, convertedtype=UTF8"`
	FullContent     string  `parquet:"name=full_content, type=BYTE_ARRAY, convertedtype=UTF8"`
	FindingsJSON    string  `parquet:"name=findings, type=BYTE_ARRAY, convertedtype=UTF8"`
}

type textUnitRow struct {
	ID            string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Text          string `parquet:"name=text, type=BYTE_ARRAY, convertedtype=UTF8"`
	NTokens       int64  `parquet:"name=n_tokens, type=INT64"`
	EntityIDsJSON string `parquet:"name=entity_ids, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// readRows opens path as a local parquet file, scans every row into T using
// the struct's parquet tags, and closes the reader before returning.
func readRows[T any](path string) ([]T, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	var zero T
	pr, err := reader.NewParquetReader(fr, &zero, 4)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	rows := make([]T, num)
	if num == 0 {
		return rows, nil
	}
	if err := pr.Read(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// decodeIDList unmarshals a JSON array column into a string slice, treating
// an empty or unparsable value as an empty list rather than an error — the
// indexer always emits well-formed JSON here, but a store should never
// refuse to serve the rest of a row over one malformed list field.
func decodeIDList(raw string) []string {
	if raw == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}

// decodeFindings tolerates both shapes allowed by the indexer: a list of
// plain strings, or a list of {summary, explanation} objects. Either is
// normalized to []Finding, with Explanation left empty for bare strings.
func decodeFindings(raw string) []Finding {
	if raw == "" {
		return nil
	}

	var objects []Finding
	if err := json.Unmarshal([]byte(raw), &objects); err == nil {
		return objects
	}

	var strs []string
	if err := json.Unmarshal([]byte(raw), &strs); err == nil {
		findings := make([]Finding, 0, len(strs))
		for _, s := range strs {
			findings = append(findings, Finding{Summary: s})
		}
		return findings
	}

	return nil
}
