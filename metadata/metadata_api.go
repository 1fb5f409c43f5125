package metadata

import (
	"net/http"

	"dicom-vault-api/constants"
	"dicom-vault-api/entities"
	"dicom-vault-api/mw"
	"dicom-vault-api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MetadataAPI struct {
	metaStore    *MetadataES
	orchestrator *Orchestrator
	logger       *zap.Logger
}

func NewMetadataAPI(metaStore *MetadataES, orchestrator *Orchestrator, logger *zap.Logger) (app *MetadataAPI) {
	app = &MetadataAPI{
		metaStore:    metaStore,
		orchestrator: orchestrator,
		logger:       logger,
	}
	return app
}

func (app *MetadataAPI) InitRoute(engine *gin.Engine, path string) {
	group := engine.Group(path, mw.WrapAuthInfo(app.logger))
	group.GET("/:id", mw.ValidPerms(path, mw.PERM_R), app.GetMetadata)
	group.PUT("/:id", mw.ValidPerms(path, mw.PERM_U), app.UpdateMetadata)
	group.POST("/:id/extract", mw.ValidPerms(path, mw.PERM_U), app.ExtractMetadata)
}

func (app *MetadataAPI) GetMetadata(c *gin.Context) {
	resp := entities.NewResponse()

	imageID := c.Param(constants.ParamID)
	if imageID == "" {
		resp.ErrorCode = constants.ServerInvalidData
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	record, err := app.metaStore.Get(imageID)
	if err != nil {
		utils.LogError(err)
		resp.ErrorCode = constants.ServerError
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	resp.Data = record
	c.JSON(http.StatusOK, resp)
}

// UpdateMetadata replaces the stored record, the manual correction path.
func (app *MetadataAPI) UpdateMetadata(c *gin.Context) {
	resp := entities.NewResponse()

	imageID := c.Param(constants.ParamID)
	if imageID == "" {
		resp.ErrorCode = constants.ServerInvalidData
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	var record Record
	if err := c.ShouldBindJSON(&record); err != nil {
		resp.ErrorCode = constants.ServerInvalidData
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	if err := app.metaStore.Put(imageID, record); err != nil {
		utils.LogError(err)
		resp.ErrorCode = constants.ServerError
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	resp.Data = record
	c.JSON(http.StatusOK, resp)
}

// ExtractMetadata forces a fresh extraction session against the stored file
// and returns the merged record plus the fields the run actually changed.
func (app *MetadataAPI) ExtractMetadata(c *gin.Context) {
	resp := entities.NewResponse()

	imageID := c.Param(constants.ParamID)
	if imageID == "" {
		resp.ErrorCode = constants.ServerInvalidData
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	session := app.orchestrator.Select(imageID)
	if err := session.Run(); err != nil {
		app.logger.Info("extraction session ended early",
			zap.String("image_id", imageID), zap.String("state", session.State))
	}

	resp.Data = session
	c.JSON(http.StatusOK, resp)
}
