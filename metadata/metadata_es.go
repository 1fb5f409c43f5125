package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dicom-vault-api/entities"
	"dicom-vault-api/utils"

	"github.com/bsm/redislock"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"go.uber.org/zap"
)

// RecordDoc is the stored form of a metadata record, keyed by image ID.
type RecordDoc struct {
	ID       string `json:"id"`
	Modified int64  `json:"modified"`
	Record   Record `json:"record"`
}

func (doc *RecordDoc) String() string {
	b, _ := json.Marshal(doc)
	return string(b)
}

// MetadataES is the Elasticsearch-backed persistence gateway. Concurrency
// control on the stored record lives here: writes to one image's record are
// serialized with a redis lock, the extraction core stays lock-free.
type MetadataES struct {
	esClient  *elasticsearch.Client
	indexName string
	locker    *redislock.Client
	logger    *zap.Logger
}

func NewMetadataStore(es *elasticsearch.Client, indexName string, locker *redislock.Client, logger *zap.Logger) *MetadataES {
	return &MetadataES{
		es, indexName, locker, logger,
	}
}

const lockTTL = 5 * time.Second

func lockKey(imageID string) string {
	return fmt.Sprintf("metadata_lock:%s", imageID)
}

// Get returns the baseline record for an image. "Nothing stored" is an
// all-empty record, never an error; only transport failures are reported,
// and callers are expected to degrade to an empty baseline on those too.
func (store *MetadataES) Get(imageID string) (Record, error) {
	es := store.esClient

	var (
		esReturn entities.ESReturn
		esError  entities.ESError
		buf      bytes.Buffer
	)

	body := utils.ConvertInputsToESQueryBody(nil, fmt.Sprintf("_id:%s", imageID), 0, 1, "", nil)
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return Record{}, fmt.Errorf("Error encoding query: %s", err)
	}

	res, err := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(store.indexName),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return Record{}, fmt.Errorf("Error getting response: %s", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		// A missing index just means no record was ever written.
		if res.StatusCode == 404 {
			return Record{}, nil
		}
		if err := json.NewDecoder(res.Body).Decode(&esError); err != nil {
			return Record{}, fmt.Errorf("Error parsing the response body: %s", err)
		}
		return Record{}, fmt.Errorf("[%s] %s: %s", res.Status(), esError.Error.Type, esError.Error.Reason)
	}

	if err := json.NewDecoder(res.Body).Decode(&esReturn); err != nil {
		return Record{}, fmt.Errorf("Error parsing the response body: %s", err)
	}

	if len(esReturn.Hits.Hits) == 0 {
		return Record{}, nil
	}

	var doc RecordDoc
	bytesData, _ := json.Marshal(esReturn.Hits.Hits[0].Source)
	if err := json.Unmarshal(bytesData, &doc); err != nil {
		return Record{}, fmt.Errorf("Error parsing the stored record: %s", err)
	}

	return doc.Record, nil
}

// Put stores the record for an image, replacing any previous document. The
// per-image lock serializes concurrent writers; callers treat a failure as
// a warning, the in-memory record stays valid.
func (store *MetadataES) Put(imageID string, record Record) error {
	ctx := context.Background()

	lock, err := store.locker.Obtain(ctx, lockKey(imageID), lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 10),
	})
	if err != nil {
		return fmt.Errorf("Cannot obtain write lock for %s: %s", imageID, err)
	}
	defer lock.Release(ctx)

	doc := RecordDoc{
		ID:       imageID,
		Modified: time.Now().UnixNano() / int64(time.Millisecond),
		Record:   record,
	}

	req := esapi.IndexRequest{
		Index:      store.indexName,
		DocumentID: imageID,
		Body:       strings.NewReader(doc.String()),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, store.esClient)
	if err != nil {
		return fmt.Errorf(fmt.Sprintf("IndexRequest ERROR: %s", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%s ERROR indexing record ID=%s", res.Status(), imageID)
	}

	store.logger.Debug("stored metadata record", zap.String("image_id", imageID))
	return nil
}

// Delete removes the stored record when its image is deleted.
func (store *MetadataES) Delete(imageID string) error {
	req := esapi.DeleteRequest{
		Index:      store.indexName,
		DocumentID: imageID,
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), store.esClient)
	if err != nil {
		return fmt.Errorf(fmt.Sprintf("DeleteRequest ERROR: %s", err))
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("%s ERROR deleting record ID=%s", res.Status(), imageID)
	}

	return nil
}
