// Package search keeps the Elasticsearch product projection in sync with
// catalog events.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/consumer"
	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	IndexName   = "products"
	versionType = "external_gte"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "productId": {"type": "long"},
      "name":      {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "shortDesc": {"type": "text"},
      "deleted":   {"type": "boolean"},
      "updatedAt": {"type": "date"}
    }
  }
}`

// Document is one product in the index. Removed products stay behind as
// tombstones with Deleted set, and queries must filter them out.
type Document struct {
	ProductID int64      `json:"productId"`
	Name      string     `json:"name"`
	ShortDesc string     `json:"shortDesc"`
	Deleted   bool       `json:"deleted"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type Index interface {
	// Upsert reports false when a newer version of the document is already indexed.
	Upsert(ctx context.Context, doc Document) (bool, error)
	// Delete replaces the document with a tombstone versioned by at, so an
	// older update delivered later is rejected. A zero at deletes the document
	// outright and succeeds when it is missing.
	Delete(ctx context.Context, productID int64, at time.Time) error
}

type esIndex struct {
	client *es.Client
	name   string
}

func newIndex(client *es.Client) Index {
	return &esIndex{client: client, name: IndexName}
}

func (i *esIndex) Upsert(ctx context.Context, doc Document) (bool, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("%w: failed to encode document %d: %w", consumer.ErrPermanent, doc.ProductID, err)
	}

	req := esapi.IndexRequest{
		Index:      i.name,
		DocumentID: documentID(doc.ProductID),
		Body:       bytes.NewReader(body),
	}
	if doc.UpdatedAt != nil {
		req.Version = version(*doc.UpdatedAt)
		req.VersionType = versionType
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return false, fmt.Errorf("failed to index product %d: %w", doc.ProductID, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusConflict {
		return false, nil
	}
	if res.IsError() {
		return false, responseError("index", doc.ProductID, res)
	}
	return true, nil
}

func (i *esIndex) Delete(ctx context.Context, productID int64, at time.Time) error {
	if !at.IsZero() {
		_, err := i.Upsert(ctx, Document{ProductID: productID, Deleted: true, UpdatedAt: &at})
		return err
	}

	res, err := esapi.DeleteRequest{
		Index:      i.name,
		DocumentID: documentID(productID),
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", productID, err)
	}
	defer func() { _ = res.Body.Close() }()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil
	case res.IsError():
		return responseError("delete", productID, res)
	}
	return nil
}

// ensureIndex creates the index with its mapping unless it already exists.
func ensureIndex(ctx context.Context, client *es.Client) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{IndexName}}.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", IndexName, err)
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{
		Index: IndexName,
		Body:  strings.NewReader(indexMapping),
	}.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", IndexName, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		if bytes.Contains(msg, []byte("resource_already_exists_exception")) {
			return nil
		}
		return fmt.Errorf("failed to create index %s: %s: %s", IndexName, res.Status(), msg)
	}
	return nil
}

func documentID(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

func version(t time.Time) *int {
	v := int(t.UnixMilli())
	return &v
}

// responseError marks client errors other than throttling as permanent.
func responseError(op string, productID int64, res *esapi.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	err := fmt.Errorf("elasticsearch %s product %d: %s: %s", op, productID, res.Status(), bytes.TrimSpace(msg))
	if res.StatusCode >= 400 && res.StatusCode < 500 && res.StatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", consumer.ErrPermanent, err)
	}
	return err
}
