package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"dicom-vault-api/account"
	"dicom-vault-api/constants"
	"dicom-vault-api/image"
	"dicom-vault-api/keycloak"
	"dicom-vault-api/metadata"
	"dicom-vault-api/utils"

	"github.com/bsm/redislock"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newLogger() *zap.Logger {
	env := viper.GetString("workspace.env")
	var logger *zap.Logger
	switch env {
	case "DEVELOPMENT":
		logger, _ = zap.NewDevelopment()
	default:
		logger, _ = zap.NewProduction()
	}
	return logger
}

func initConfigs(env string) {
	viper.AddConfigPath("conf")
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	viper.AutomaticEnv()
	replacer := strings.NewReplacer(".", "__")
	viper.SetEnvKeyReplacer(replacer)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}
}

func getMapEnvVars() *map[string]string {
	ret := make(map[string]string)
	envsOS := os.Environ()
	for _, envOS := range envsOS {
		items := strings.Split(envOS, "=")
		if len(items) > 1 {
			ret[items[0]] = items[1]
		}
	}
	return &ret
}

func main() {

	envVars := getMapEnvVars()
	env := "development"
	if value, found := (*envVars)[constants.ENV]; found {
		env = value
	}
	utils.LogInfo(fmt.Sprintf("API is running in [%s] mode", env))
	initConfigs(env)

	route := gin.Default()
	logger := newLogger()

	route.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"POST", "PUT", "GET", "DELETE"},
		AllowHeaders:     []string{"Access-Control-Allow-Headers", "Origin", "Accept", "X-Requested-With", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	var esAddresses []string
	esSingleNode := viper.GetString("elasticsearch.uri")
	if esSingleNode != "" {
		esAddresses = []string{esSingleNode}
	} else {
		esAddresses = viper.GetStringSlice("elasticsearch.uris")
	}
	utils.LogInfo("%v", esAddresses)

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: esAddresses,
	})
	_, err = es.Info()
	if err != nil {
		panic("Cannot connect to ES")
	}

	clientRedis := redis.NewClient(&redis.Options{
		Network:    "tcp",
		Addr:       viper.GetString("redis.uri"),
		MaxRetries: 1000,
	})
	defer clientRedis.Close()

	lockerRedis := redislock.New(clientRedis)

	utils.LogInfo(viper.GetString("minio.uri"))
	minioClient, err := minio.New(
		viper.GetString("minio.uri"),
		&minio.Options{
			Creds: credentials.NewStaticV4(viper.GetString("minio.access_key_id"), viper.GetString("minio.secret_access_key"), ""),
		})

	if err != nil {
		panic("Cannot connect to MinIO")
	}

	fileStorage := image.NewFileStorage(minioClient, viper.GetString("minio.bucket_name"))
	utils.LogError(fileStorage.MakeBucket())

	renderGateway := image.NewRenderGateway(viper.GetString("render.uri"))

	imageStore := image.NewImageStore(es, viper.GetString("elasticsearch.image_index_prefix"), logger)
	metaStore := metadata.NewMetadataStore(es, viper.GetString("elasticsearch.metadata_index_name"), lockerRedis, logger)

	dicomCodec := image.NewDICOMCodec(fileStorage)
	orchestrator := metadata.NewOrchestrator(metaStore, dicomCodec, logger)

	kc := &keycloak.KeycloakConfig{
		MasterRealm:   viper.GetString("keycloak.master_realm"),
		AdminUsername: viper.GetString("keycloak.admin_username"),
		AdminPassword: viper.GetString("keycloak.admin_password"),
		KeycloakURI:   viper.GetString("keycloak.uri"),
	}
	keycloakStore := account.NewKeycloakStore(kc, viper.GetString("keycloak.app_realm"))

	imageAPI := image.NewImageAPI(imageStore, metaStore, fileStorage, renderGateway, orchestrator, logger)
	imageAPI.InitRoute(route, "images")
	go imageAPI.DequeueImages()
	time.Sleep(1 * time.Millisecond)

	metadataAPI := metadata.NewMetadataAPI(metaStore, orchestrator, logger)
	metadataAPI.InitRoute(route, "metadata")

	accountAPI := account.NewAccountAPI(keycloakStore, logger)
	accountAPI.InitRoute(route, "accounts")

	route.Run("0.0.0.0:" + viper.GetString("webserver.port"))
}
