package image

import (
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/gojektech/heimdall/v6/httpclient"
)

// RenderGateway talks to the external viewport/rendering service that turns
// stored DICOM objects into displayable previews.
type RenderGateway struct {
	uri        string
	httpClient *httpclient.Client
}

func NewRenderGateway(uri string) *RenderGateway {
	timeout := 5000 * time.Millisecond

	httpClient := httpclient.NewClient(
		httpclient.WithHTTPTimeout(timeout),
		httpclient.WithRetryCount(3),
	)

	return &RenderGateway{
		uri:        uri,
		httpClient: httpClient,
	}
}

// GetPreview fetches a rendered preview for one image. Returns the image
// bytes and their content type.
func (gateway *RenderGateway) GetPreview(imageID string) ([]byte, string, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/instances/%s/preview", gateway.uri, imageID), nil)
	if err != nil {
		return nil, "", err
	}

	res, err := gateway.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, "", errors.New(res.Status)
	}

	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, "", err
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	return data, contentType, nil
}
