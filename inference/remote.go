package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/chaos-io/visionkit/util"
	nhttp "github.com/chaos-io/visionkit/util/http"
)

const (
	segmentPath = "/v1/segment"
	embedPath   = "/v1/embed"
	detectPath  = "/v1/detect"
	ocrPath     = "/v1/ocr"
	healthPath  = "/health"
)

// Remote 通过 HTTP 调用推理服务，同时实现 Segmenter、Embedder、Detector、Recognizer
type Remote struct {
	baseURL   string
	inputSize int
	cli       nhttp.IClient
}

func NewRemote(baseURL string, inputSize int, cli nhttp.IClient) *Remote {
	if inputSize <= 0 {
		inputSize = DefaultInputSize
	}
	if cli == nil {
		cli = nhttp.NewHTTPClient()
	}
	return &Remote{
		baseURL:   strings.TrimRight(baseURL, "/"),
		inputSize: inputSize,
		cli:       cli,
	}
}

func (r *Remote) InputSize() int {
	return r.inputSize
}

type segmentReq struct {
	Input *Tensor `json:"input"`
}

type segmentResp struct {
	Output Output `json:"output"`
}

func (r *Remote) Segment(ctx context.Context, input *Tensor) (Output, error) {
	resp := &segmentResp{}
	if err := r.post(ctx, segmentPath, &segmentReq{Input: input}, resp); err != nil {
		return Output{}, err
	}

	util.Logger.Debug("segment output", zap.Stringer("kind", resp.Output.Kind))
	return resp.Output, nil
}

type embedReq struct {
	Images []string `json:"images"`
}

type embedResp struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (r *Remote) Embed(ctx context.Context, images []image.Image) ([][]float32, error) {
	req := &embedReq{Images: make([]string, len(images))}
	for i, img := range images {
		encoded, err := encodeImage(img)
		if err != nil {
			return nil, fmt.Errorf("encode image %d: %w", i, err)
		}
		req.Images[i] = encoded
	}

	resp := &embedResp{}
	if err := r.post(ctx, embedPath, req, resp); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(resp.Embeddings) != len(images) {
		return nil, fmt.Errorf("embed: got %d embeddings for %d images", len(resp.Embeddings), len(images))
	}

	return resp.Embeddings, nil
}

type imageReq struct {
	Image string `json:"image"`
}

type detectResp struct {
	Detections []Detection `json:"detections"`
}

func (r *Remote) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	encoded, err := encodeImage(img)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	resp := &detectResp{}
	if err := r.post(ctx, detectPath, &imageReq{Image: encoded}, resp); err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	return resp.Detections, nil
}

type ocrResp struct {
	Text string `json:"text"`
}

func (r *Remote) Recognize(ctx context.Context, img image.Image) (string, error) {
	encoded, err := encodeImage(img)
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	resp := &ocrResp{}
	if err := r.post(ctx, ocrPath, &imageReq{Image: encoded}, resp); err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return resp.Text, nil
}

// Probe 检查推理服务是否可用
func (r *Remote) Probe(ctx context.Context) error {
	return r.cli.DoHTTPRequest(ctx, &nhttp.RequestParam{
		RequestURI: r.baseURL + healthPath,
		Method:     http.MethodGet,
	})
}

func (r *Remote) post(ctx context.Context, path string, body, response interface{}) error {
	reqParam := &nhttp.RequestParam{
		RequestURI: r.baseURL + path,
		Method:     http.MethodPost,
		Header:     map[string]string{"Content-Type": "application/json"},
		Body:       body,
		Response:   response,
	}
	if err := r.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	return nil
}

func encodeImage(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
