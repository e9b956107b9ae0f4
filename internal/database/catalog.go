// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/storage"
)

// ErrTitleNotFound is returned by LookupShowType when no catalog row has
// the requested title.
var ErrTitleNotFound = errors.New("title not found in catalog")

// catalogColumns maps lowercased source column names to record fields.
// The second group covers the public Netflix titles export.
var catalogColumns = map[string]string{
	"id":           "id",
	"title":        "title",
	"showtype":     "showType",
	"overview":     "overview",
	"genres":       "genres",
	"cast":         "cast",
	"directors":    "directors",
	"episodecount": "episodeCount",
	"seasoncount":  "seasonCount",

	"show_id":     "id",
	"type":        "showType",
	"description": "overview",
	"listed_in":   "genres",
	"director":    "directors",
}

// Catalog reads training items from a CSV file (local or gs://) or a
// table, through DuckDB. It implements recommend.CatalogSource.
type Catalog struct {
	db  *DB
	cfg config.DatasetConfig
	gcs storage.GCSConfig

	mu    sync.Mutex
	local *datasetCopy // current download of a gs:// dataset
}

// datasetCopy is a downloaded dataset file. A superseded copy is removed
// once no query holds it.
type datasetCopy struct {
	path  string
	refs  int
	stale bool
}

// NewCatalog returns a catalog source. gcs is used only for gs:// paths.
func NewCatalog(db *DB, cfg config.DatasetConfig, gcs storage.GCSConfig) *Catalog {
	return &Catalog{db: db, cfg: cfg, gcs: gcs}
}

var _ recommend.CatalogSource = (*Catalog)(nil)

// LoadCatalog reads every row. A gs:// dataset is downloaded again on
// each call so retraining sees the current object.
func (c *Catalog) LoadCatalog(ctx context.Context) ([]recommend.CatalogItem, error) {
	rel, release, err := c.relation(ctx, true)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	rows, err := c.db.conn.QueryContext(ctx, "SELECT * FROM "+rel)
	if err != nil {
		observe("select", "catalog", start, err)
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	defer closeWithLog(rows, "catalog rows")

	items, err := scanCatalogRows(rows)
	observe("select", "catalog", start, err)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().Str("source", c.cfg.Source).Int("rows", len(items)).Msg("Catalog loaded")
	return items, nil
}

// LookupShowType returns the showType of the first row whose title
// matches case-insensitively.
func (c *Catalog) LookupShowType(ctx context.Context, title string) (string, error) {
	ctx, cancel := c.db.ensureContext(ctx)
	defer cancel()

	rel, release, err := c.relation(ctx, false)
	if err != nil {
		return "", err
	}
	defer release()

	start := time.Now()
	rows, err := c.db.conn.QueryContext(ctx,
		"SELECT * FROM "+rel+" WHERE LOWER(CAST(title AS VARCHAR)) = LOWER(?) LIMIT 1", title)
	if err != nil {
		observe("select", "catalog", start, err)
		return "", fmt.Errorf("failed to look up title: %w", err)
	}
	defer closeWithLog(rows, "catalog rows")

	items, err := scanCatalogRows(rows)
	observe("select", "catalog", start, err)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", fmt.Errorf("%q: %w", title, ErrTitleNotFound)
	}
	return items[0].ShowType, nil
}

// Close drops the downloaded dataset copy. The file is removed now, or
// when the last running query releases it.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.retire(c.local)
	c.local = nil
	return err
}

// relation returns the FROM expression for the dataset and a release
// func to call once the query using it has finished.
func (c *Catalog) relation(ctx context.Context, refresh bool) (string, func(), error) {
	switch c.cfg.Source {
	case "table":
		return quoteIdent(c.cfg.Table), func() {}, nil
	case "csv":
		path, release := c.cfg.Path, func() {}
		if strings.HasPrefix(path, "gs://") {
			local, done, err := c.localCopy(ctx, refresh)
			if err != nil {
				return "", nil, err
			}
			path, release = local, done
		}
		return fmt.Sprintf("read_csv_auto(%s, header = true)", quoteLiteral(path)), release, nil
	default:
		return "", nil, fmt.Errorf("unknown dataset source %q", c.cfg.Source)
	}
}

// localCopy returns the downloaded gs:// dataset, fetching it when there
// is no copy or refresh is set. The copy stays on disk until release.
func (c *Catalog) localCopy(ctx context.Context, refresh bool) (string, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.local == nil || refresh {
		path, err := c.download(ctx)
		if err != nil {
			return "", nil, err
		}
		c.setLocal(ctx, path)
		logging.Ctx(ctx).Info().Str("uri", c.cfg.Path).Msg("Downloaded catalog dataset")
	}
	return c.acquire(c.local)
}

// setLocal makes path the current copy and retires the previous one.
// c.mu must be held.
func (c *Catalog) setLocal(ctx context.Context, path string) {
	if err := c.retire(c.local); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to remove superseded dataset copy")
	}
	c.local = &datasetCopy{path: path}
}

// acquire takes a reference on f. c.mu must be held.
func (c *Catalog) acquire(f *datasetCopy) (string, func(), error) {
	f.refs++
	var once sync.Once
	return f.path, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			f.refs--
			if f.stale && f.refs == 0 {
				if err := removeDataset(f.path); err != nil {
					logging.Warn().Err(err).Msg("Failed to remove superseded dataset copy")
				}
			}
		})
	}, nil
}

// retire marks f superseded and removes it if unused. c.mu must be held.
func (c *Catalog) retire(f *datasetCopy) error {
	if f == nil || f.stale {
		return nil
	}
	f.stale = true
	if f.refs > 0 {
		return nil
	}
	return removeDataset(f.path)
}

func removeDataset(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove downloaded dataset: %w", err)
	}
	return nil
}

// download copies the gs:// dataset to a temp file.
func (c *Catalog) download(ctx context.Context) (string, error) {
	bucket, object, err := splitGSURI(c.cfg.Path)
	if err != nil {
		return "", err
	}
	cfg := c.gcs
	cfg.Bucket = bucket
	client, err := storage.NewGCSClient(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer closeWithLog(client, "gcs client")

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", c.cfg.Path, err)
	}
	defer closeWithLog(r, "gcs reader")

	f, err := os.CreateTemp("", "reelmatch-catalog-*"+filepath.Ext(object))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		closeQuietly(f)
		_ = os.Remove(f.Name()) //nolint:errcheck // best-effort cleanup of a partial download
		return "", fmt.Errorf("download %s: %w", c.cfg.Path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name()) //nolint:errcheck // best-effort cleanup of a partial download
		return "", fmt.Errorf("close downloaded dataset: %w", err)
	}
	return f.Name(), nil
}

func splitGSURI(uri string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(uri, "gs://")
	i := strings.Index(rest, "/")
	if i <= 0 || i == len(rest)-1 {
		return "", "", fmt.Errorf("invalid gs:// uri %q", uri)
	}
	return rest[:i], rest[i+1:], nil
}

// scanCatalogRows maps rows onto records by column name. Unknown columns
// are ignored.
func scanCatalogRows(rows *sql.Rows) ([]recommend.CatalogItem, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog columns: %w", err)
	}
	fields := make([]string, len(cols))
	hasTitle := false
	for i, col := range cols {
		fields[i] = catalogColumns[strings.ToLower(col)]
		if fields[i] == "title" {
			hasTitle = true
		}
	}
	if !hasTitle {
		return nil, fmt.Errorf("catalog has no title column (columns: %s)", strings.Join(cols, ", "))
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	var items []recommend.CatalogItem
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		var item recommend.CatalogItem
		for i, field := range fields {
			assignField(&item, field, values[i])
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog rows: %w", err)
	}
	return items, nil
}

func assignField(item *recommend.CatalogItem, field string, v any) {
	switch field {
	case "id":
		if v != nil {
			item.ID = fmt.Sprint(v)
		}
	case "title":
		if v != nil {
			item.Title = fmt.Sprint(v)
		}
	case "showType":
		if v != nil {
			item.ShowType = strings.ToLower(fmt.Sprint(v))
		}
	case "overview":
		item.Overview = textValue(v)
	case "genres":
		item.Genres = textValue(v)
	case "cast":
		item.Cast = textValue(v)
	case "directors":
		item.Directors = textValue(v)
	case "episodeCount":
		item.EpisodeCount = numericValue(v)
	case "seasonCount":
		item.SeasonCount = numericValue(v)
	}
}

// numericValue converts DECIMAL columns to float64. Integers of any width
// and HUGEINT's *big.Int are left to features.ToFloat.
func numericValue(v any) any {
	switch d := v.(type) {
	case duckdb.Decimal:
		return decimalValue(d)
	case *duckdb.Decimal:
		if d == nil {
			return nil
		}
		return decimalValue(*d)
	default:
		return v
	}
}

func decimalValue(d duckdb.Decimal) any {
	if d.Value == nil {
		return nil
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.Scale)), nil)
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(d.Value), new(big.Float).SetInt(scale)).Float64()
	return f
}

// textValue keeps strings and nulls as they are and renders DuckDB lists
// in the bracketed form the feature builder normalizes.
func textValue(v any) any {
	switch t := v.(type) {
	case nil, string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if e != nil {
				parts = append(parts, "'"+fmt.Sprint(e)+"'")
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(t)
	}
}
