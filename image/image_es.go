package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dicom-vault-api/entities"
	"dicom-vault-api/utils"

	"github.com/dustin/go-humanize"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"go.uber.org/zap"
)

type ImageES struct {
	esClient    *elasticsearch.Client
	indexPrefix string
	logger      *zap.Logger
}

func NewImageStore(es *elasticsearch.Client, indexPrefix string, logger *zap.Logger) *ImageES {
	return &ImageES{
		es, indexPrefix, logger,
	}
}

type kvStr2Inf = map[string]interface{}

func getIndexName(indexPrefix string, image Image) string {
	indexTime := utils.ConvertTimeStampToTime(image.Created)
	index := fmt.Sprintf("%s_%d%02d", indexPrefix, indexTime.Year(), indexTime.Month())
	return index
}

func getIndexWildcard(indexPrefix string) string {
	index := fmt.Sprintf("%s_*", indexPrefix)
	return index
}

// Create function
func (store *ImageES) Create(image Image) error {
	req := esapi.IndexRequest{
		Index:      getIndexName(store.indexPrefix, image),
		DocumentID: image.ID,
		Body:       strings.NewReader(image.String()),
		Refresh:    "true",
	}

	ctx := context.Background()
	res, err := req.Do(ctx, store.esClient)
	if err != nil {
		return fmt.Errorf(fmt.Sprintf("IndexRequest ERROR: %s", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%s ERROR indexing document ID=%s", res.Status(), image.ID)
	}

	var resMap map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&resMap); err != nil {
		return fmt.Errorf("Error parsing the response body: %s", err)
	}

	if resMap["result"] == "created" {
		return nil
	}

	return err
}

// Bulk indexes a batch of image documents in one shot.
func (store *ImageES) Bulk(images []Image) error {
	if len(images) == 0 {
		return errors.New("nothing to index")
	}

	var (
		buf bytes.Buffer
		res *esapi.Response
		raw map[string]interface{}
		blk *entities.ESBulkResponse

		indexName = getIndexName(store.indexPrefix, images[0])

		numItems   int
		numErrors  int
		numIndexed int
		currBatch  int
	)

	count := len(images)
	batch := 10

	es := store.esClient
	start := time.Now().UTC()

	for i, image := range images {
		numItems++

		currBatch = i / batch
		if i == count-1 {
			currBatch++
		}

		meta := []byte(fmt.Sprintf(`{ "index" : { "_id" : "%s" } }%s`, image.ID, "\n"))

		data, err := json.Marshal(image)
		if err != nil {
			return fmt.Errorf("Cannot encode %s: %s", image.ID, err)
		}
		data = append(data, "\n"...)

		buf.Grow(len(meta) + len(data))
		buf.Write(meta)
		buf.Write(data)

		if i > 0 && i%batch == 0 || i == count-1 {
			res, err = es.Bulk(bytes.NewReader(buf.Bytes()), es.Bulk.WithIndex(indexName), es.Bulk.WithRefresh("true"))
			if err != nil {
				return fmt.Errorf("Failure indexing batch %d: %s", currBatch, err)
			}

			if res.IsError() {
				numErrors += numItems
				if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
					res.Body.Close()
					return fmt.Errorf("Failure to parse response body: %s", err)
				}
				utils.LogInfo("Error: [%d] %s: %s",
					res.StatusCode,
					raw["error"].(map[string]interface{})["type"],
					raw["error"].(map[string]interface{})["reason"],
				)
			} else {
				if err := json.NewDecoder(res.Body).Decode(&blk); err != nil {
					res.Body.Close()
					return fmt.Errorf("Failure to parse response body: %s", err)
				}
				for _, d := range blk.Items {
					if d.Index.Status > 201 {
						numErrors++
						utils.LogInfo("  Error: [%d]: %s: %s: %s: %s",
							d.Index.Status, d.Index.Error.Type, d.Index.Error.Reason, d.Index.Error.Cause.Type, d.Index.Error.Cause.Reason,
						)
					} else {
						numIndexed++
					}
				}
			}

			res.Body.Close()

			buf.Reset()
			numItems = 0
		}
	}

	dur := time.Since(start)

	if numErrors > 0 {
		utils.LogDebug("Indexed [%s] documents with [%s] errors in %s (%s docs/sec)",
			humanize.Comma(int64(numIndexed)),
			humanize.Comma(int64(numErrors)),
			dur.Truncate(time.Millisecond),
			humanize.Comma(int64(1000.0/float64(dur/time.Millisecond)*float64(numIndexed))),
		)
		return fmt.Errorf("%d documents failed to index", numErrors)
	}

	return nil
}

// GetSlice function
func (store *ImageES) GetSlice(queries map[string][]string, qs string,
	from, size int, sort string, aggs []string) ([]Image, *entities.ESReturn, error) {
	es := store.esClient

	var (
		esReturn entities.ESReturn
		buf      bytes.Buffer
		esError  entities.ESError
	)

	body := utils.ConvertInputsToESQueryBody(queries, qs, from, size, sort, aggs)
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, fmt.Errorf("Error encoding query: %s", err)
	}
	utils.LogDebug(utils.ConvertMapToString(*body))

	res, err := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(getIndexWildcard(store.indexPrefix)),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
		es.Search.WithPretty(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("Error getting response: %s", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if err := json.NewDecoder(res.Body).Decode(&esError); err != nil {
			return nil, nil, fmt.Errorf("Error parsing the response body: %s", err)
		}
		return nil, nil, fmt.Errorf("[%s] %s: %s", res.Status(), esError.Error.Type, esError.Error.Reason)
	}

	if err := json.NewDecoder(res.Body).Decode(&esReturn); err != nil {
		return nil, nil, fmt.Errorf("Error parsing the response body: %s", err)
	}

	utils.LogDebug("[%s] %d hits; took: %dms", res.Status(), esReturn.Hits.Total.Value, esReturn.Took)

	images := make([]Image, 0)
	for _, hit := range esReturn.Hits.Hits {
		var image Image
		mapData := hit.Source
		bytesData, _ := json.Marshal(mapData)
		err := json.Unmarshal(bytesData, &image)
		if err == nil {
			images = append(images, image)
		}
	}

	return images, &esReturn, nil
}

// Get one image document.
func (store *ImageES) Get(queries map[string][]string, qs string) (*Image, *entities.ESReturn, error) {
	images, esReturn, err := store.GetSlice(queries, qs, 0, 1, "", nil)
	if err != nil {
		return nil, nil, err
	}
	if len(images) > 0 {
		return &images[0], esReturn, nil
	}
	return nil, esReturn, nil
}

// Query pages through all matches.
func (store *ImageES) Query(queries map[string][]string, qs string, from, size int, sort string, aggs []string, f func(images []Image, es entities.ESReturn)) error {
	from1 := from
	size1 := size

	for {
		images, esReturn, err := store.GetSlice(queries, qs, from1, size1, sort, aggs)
		if err != nil {
			return err
		}

		f(images, *esReturn)

		if len(images) < size1 {
			break
		}

		from1 += size1
	}
	return nil
}

// Delete function
func (store *ImageES) Delete(queries map[string][]string, qs string) error {
	var buf bytes.Buffer
	body := utils.ConvertInputsToESQueryBody(queries, qs, -1, -1, "", nil)
	utils.LogDebug(utils.ConvertMapToString(*body))

	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return fmt.Errorf("Error encoding query: %s", err)
	}
	refresh := true
	req := esapi.DeleteByQueryRequest{
		Index:   []string{getIndexWildcard(store.indexPrefix)},
		Body:    &buf,
		Refresh: &refresh,
	}

	ctx := context.Background()
	res, err := req.Do(ctx, store.esClient)
	if err != nil {
		return fmt.Errorf(fmt.Sprintf("DeleteByQueryRequest ERROR: %s", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%s ERROR deleting document", res.Status())
	}

	return nil
}

// Update function
func (store *ImageES) Update(image Image, update map[string]interface{}) error {
	_, esReturn, err := store.Get(nil, fmt.Sprintf("_id:%s", image.ID))
	if err != nil {
		return err
	}
	if len(esReturn.Hits.Hits) == 0 {
		return fmt.Errorf("No document for ID=%s", image.ID)
	}

	indexName := esReturn.Hits.Hits[0].Index

	now := time.Now().UnixNano() / int64(time.Millisecond)
	update["modified"] = now

	var buf bytes.Buffer
	body := kvStr2Inf{}
	body["doc"] = update

	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return fmt.Errorf("Error encoding query: %s", err)
	}
	req := esapi.UpdateRequest{
		Index:      indexName,
		DocumentID: image.ID,
		Refresh:    "true",
		Body:       &buf,
	}

	ctx := context.Background()
	res, err := req.Do(ctx, store.esClient)
	if err != nil {
		return fmt.Errorf(fmt.Sprintf("UpdateRequest ERROR: %s", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%s ERROR updating document ID=%s", res.Status(), image.ID)
	}

	return nil
}
