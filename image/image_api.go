package image

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"dicom-vault-api/constants"
	"dicom-vault-api/entities"
	"dicom-vault-api/metadata"
	"dicom-vault-api/mw"
	"dicom-vault-api/utils"

	"github.com/enriquebris/goconcurrentqueue"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ImageAPI struct {
	imageStore   *ImageES
	metaStore    *metadata.MetadataES
	storage      *FileStorage
	render       *RenderGateway
	orchestrator *metadata.Orchestrator
	logger       *zap.Logger
}

func NewImageAPI(imageStore *ImageES, metaStore *metadata.MetadataES, storage *FileStorage,
	render *RenderGateway, orchestrator *metadata.Orchestrator, logger *zap.Logger) (app *ImageAPI) {
	app = &ImageAPI{
		imageStore:   imageStore,
		metaStore:    metaStore,
		storage:      storage,
		render:       render,
		orchestrator: orchestrator,
		logger:       logger,
	}
	return app
}

func (app *ImageAPI) InitRoute(engine *gin.Engine, path string) {
	group := engine.Group(path, mw.WrapAuthInfo(app.logger))
	group.GET("", mw.ValidPerms(path, mw.PERM_R), app.FetchImages)
	group.POST("", mw.ValidPerms(path, mw.PERM_C), app.CreateImages)
	group.GET("/:id", mw.ValidPerms(path, mw.PERM_R), app.GetImage)
	group.GET("/:id/file", mw.ValidPerms(path, mw.PERM_R), app.GetImageFile)
	group.GET("/:id/preview", mw.ValidPerms(path, mw.PERM_R), app.GetImagePreview)
	group.DELETE("/:id", mw.ValidPerms(path, mw.PERM_D), app.DeleteImage)
}

func (app *ImageAPI) FetchImages(c *gin.Context) {
	resp := entities.NewResponse()

	queries, searchQuery, from, size, sort, aggs := utils.ConvertGinRequestToParams(c)

	if searchQuery == "" && sort == "" {
		sort = "-created"
	}

	images, esReturn, err := app.imageStore.GetSlice(queries, searchQuery, from, size, sort, aggs)
	if err != nil {
		resp.ErrorCode = constants.ServerError
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	if esReturn.Aggregations != nil {
		aggMap := convertAggsToMap(aggs, *esReturn.Aggregations)
		resp.Agg = &aggMap
	}

	resp.Data = images
	resp.Count = esReturn.Hits.Total.Value

	c.JSON(http.StatusOK, resp)
}

// convertAggsToMap keys every requested aggregation's buckets by term; all
// aggregations ride in the one response map.
func convertAggsToMap(aggs []string, aggregations map[string]entities.Aggregation) kvStr2Inf {
	aggMap := make(kvStr2Inf)
	for _, agg := range aggs {
		arrMap := make(map[string]interface{})
		for _, bucket := range aggregations[agg].Buckets {
			arrMap[bucket.Key] = bucket.DocCount
		}
		aggMap[agg] = arrMap
	}
	return aggMap
}

// CreateImages handles a multipart upload of one or more DICOM files. Each
// file gets its own document, its own stored object and its own extraction
// session; files in one batch never share state.
func (app *ImageAPI) CreateImages(c *gin.Context) {
	resp := entities.NewResponse()

	form, err := c.MultipartForm()
	if err != nil {
		resp.ErrorCode = constants.ServerInvalidData
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	files := form.File[constants.UploadFormFiles]
	if len(files) == 0 {
		resp.ErrorCode = constants.ServerInvalidData
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	creatorID := ""
	if authInfo := mw.GetAuthInfoFromGin(c); authInfo != nil {
		creatorID = authInfo.ID
	}

	now := time.Now().UnixNano() / int64(time.Millisecond)

	images := make([]Image, 0)
	ids := make([]string, 0)

	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			utils.LogError(err)
			continue
		}
		data, err := ioutil.ReadAll(file)
		file.Close()
		if err != nil {
			utils.LogError(err)
			continue
		}

		newID := uuid.New().String()

		if err := app.storage.StoreFile(newID, data); err != nil {
			utils.LogError(err)
			continue
		}

		image := Image{
			ID:        newID,
			Created:   now,
			FileName:  fileHeader.Filename,
			Size:      int64(len(data)),
			Status:    constants.ImageStatusUploaded,
			CreatorID: creatorID,
		}

		// An early parse only feeds the searchable identifiers; the full
		// record is built by the extraction session.
		if dict, err := ParseElementDict(data); err == nil {
			record := metadata.BuildRecord(dict)
			image.Meta = &entities.MetaData{
				StudyInstanceUID:  record.StudyInstanceUID,
				SeriesInstanceUID: record.SeriesInstanceUID,
				SOPInstanceUID:    record.ImageID,
			}
		} else {
			utils.LogError(err)
		}

		images = append(images, image)
		ids = append(ids, newID)
	}

	if len(images) == 0 {
		resp.ErrorCode = constants.ServerError
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	if err := app.imageStore.Bulk(images); err != nil {
		utils.LogError(err)
		resp.ErrorCode = constants.ServerError
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	for _, id := range ids {
		app.QueueImage(id)
	}

	ret := make(map[string]interface{})
	ret[constants.ParamIDs] = ids
	resp.Data = ret
	resp.Count = len(ids)

	c.JSON(http.StatusOK, resp)
}

var queue *goconcurrentqueue.FIFO

// QueueImage enqueues an upload-time extraction for one image.
func (app *ImageAPI) QueueImage(imageID string) {
	if queue == nil {
		queue = goconcurrentqueue.NewFIFO()
	}
	queue.Enqueue(imageID)
}

// DequeueImages is the background worker draining the extraction queue.
func (app *ImageAPI) DequeueImages() {
	for {
		if queue != nil && queue.GetLen() > 0 {
			item, err := queue.Dequeue()
			if err == nil && item != nil {
				app.processExtraction(item.(string))
			}
		} else {
			time.Sleep(2 * time.Second)
		}
	}
}

func (app *ImageAPI) processExtraction(imageID string) {
	session := app.orchestrator.Select(imageID)
	if err := session.Run(); err != nil {
		// Aborted by a newer session for the same image; that one owns the
		// status from here.
		return
	}

	status := constants.ImageStatusExtracted
	if session.Merged.IsEmpty() {
		status = constants.ImageStatusFailed
	}

	if err := app.imageStore.Update(Image{ID: imageID}, kvStr2Inf{"status": status}); err != nil {
		utils.LogError(err)
	}
}

// GetImage returns the image document together with a fresh view-time
// extraction: the response carries the merged record and the fields the
// view actually changed.
func (app *ImageAPI) GetImage(c *gin.Context) {
	resp := entities.NewResponse()

	imageID := c.Param(constants.ParamID)
	if imageID == "" {
		resp.ErrorCode = constants.ServerInvalidData
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	image, _, err := app.imageStore.Get(nil, fmt.Sprintf("_id:%s", imageID))
	if err != nil {
		utils.LogError(err)
		resp.ErrorCode = constants.ServerError
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	if image == nil {
		resp.ErrorCode = constants.ServerInvalidData
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	session := app.orchestrator.Select(imageID)
	if err := session.Run(); err != nil {
		app.logger.Info("view-time extraction ended early",
			zap.String("image_id", imageID), zap.String("state", session.State))
	} else {
		resp.Meta = &kvStr2Inf{
			"metadata": session.Merged,
			"delta":    session.Delta,
		}
	}

	resp.Data = image
	c.JSON(http.StatusOK, resp)
}

func (app *ImageAPI) GetImageFile(c *gin.Context) {
	resp := entities.NewResponse()

	imageID := c.Param(constants.ParamID)
	if imageID == "" {
		resp.ErrorCode = constants.ServerInvalidData
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	data, err := app.storage.FetchFile(imageID)
	if err != nil {
		utils.LogError(err)
		resp.ErrorCode = constants.ServerError
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.Data(http.StatusOK, contentTypeDICOM, data)
}

func (app *ImageAPI) GetImagePreview(c *gin.Context) {
	resp := entities.NewResponse()

	imageID := c.Param(constants.ParamID)
	if imageID == "" {
		resp.ErrorCode = constants.ServerInvalidData
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	data, contentType, err := app.render.GetPreview(imageID)
	if err != nil {
		utils.LogError(err)
		resp.ErrorCode = constants.ServerError
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

func (app *ImageAPI) DeleteImage(c *gin.Context) {
	resp := entities.NewResponse()

	imageID := c.Param(constants.ParamID)
	if imageID == "" {
		resp.ErrorCode = constants.ServerInvalidData
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	if err := app.imageStore.Delete(nil, fmt.Sprintf("_id:%s", imageID)); err != nil {
		resp.ErrorCode = constants.ServerError
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	utils.LogError(app.metaStore.Delete(imageID))
	utils.LogError(app.storage.RemoveFile(imageID))

	c.JSON(http.StatusOK, resp)
}
