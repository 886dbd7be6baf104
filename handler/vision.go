package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaos-io/visionkit/grading"
	"github.com/chaos-io/visionkit/middleware"
	"github.com/chaos-io/visionkit/model"
	"github.com/chaos-io/visionkit/rembg"
	"github.com/chaos-io/visionkit/similarity"
	"github.com/chaos-io/visionkit/util"
)

const resultFilename = "background_removed.png"

type BackgroundRemover interface {
	Remove(ctx context.Context, data []byte) (*rembg.Result, error)
	RemoveBatch(ctx context.Context, images [][]byte) []rembg.ItemResult
}

type ImageComparer interface {
	Compare(ctx context.Context, target []byte, candidates [][]byte) ([]similarity.Score, error)
}

type ComicGrader interface {
	Grade(ctx context.Context, data []byte) (*grading.Report, error)
}

// ResultCache 按原图 MD5 缓存去背景结果，未命中返回 nil, nil
type ResultCache interface {
	Get(ctx context.Context, md5 string) ([]byte, error)
	Set(ctx context.Context, md5 string, png []byte) error
}

type VisionHandler struct {
	remover  BackgroundRemover
	comparer ImageComparer
	grader   ComicGrader
	cache    ResultCache
}

// NewVisionHandler cache 可以为 nil，此时不使用缓存
func NewVisionHandler(remover BackgroundRemover, comparer ImageComparer, grader ComicGrader, cache ResultCache) *VisionHandler {
	return &VisionHandler{
		remover:  remover,
		comparer: comparer,
		grader:   grader,
		cache:    cache,
	}
}

// Register 注册 /api 路由
func (h *VisionHandler) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.POST("/remove-background", h.RemoveBackground)
		api.POST("/remove-background-batch", h.RemoveBackgroundBatch)
		api.POST("/compare", h.Compare)
		api.POST("/best-match", h.BestMatch)
		api.POST("/image-info", h.ImageInfo)
		api.POST("/grade", h.Grade)
	}
}

// RemoveBackground 去除单张图片背景，支持 multipart 和 JSON
func (h *VisionHandler) RemoveBackground(c *gin.Context) {
	req, ok := readImageRequest(c)
	if !ok {
		return
	}
	if req.Format == "" {
		req.Format = model.FormatBase64
	}
	if req.Format != model.FormatBase64 && req.Format != model.FormatBytes && req.Format != model.FormatFile {
		badRequest(c, `format must be "base64", "bytes", or "file"`, nil)
		return
	}

	var info *util.ImageInfo
	if req.IncludeInfo {
		var err error
		if info, err = util.Inspect(req.Image); err != nil {
			fail(c, "failed to read image info", err)
			return
		}
	}

	result, err := h.removeCached(c.Request.Context(), req.Image)
	if err != nil {
		fail(c, "failed to remove background", err)
		return
	}

	if req.Format == model.FormatFile {
		c.Header("Content-Disposition", `attachment; filename="`+resultFilename+`"`)
		c.Data(http.StatusOK, "image/png", result)
		return
	}

	c.JSON(http.StatusOK, model.RemoveResponse{
		Success:        true,
		OriginalFormat: util.DetectFormat(req.Image),
		Format:         req.Format,
		Image:          encodeImage(result, req.Format),
		ImageInfo:      info,
	})
}

func (h *VisionHandler) removeCached(ctx context.Context, data []byte) ([]byte, error) {
	if h.cache == nil {
		res, err := h.remover.Remove(ctx, data)
		if err != nil {
			return nil, err
		}
		return res.PNG, nil
	}

	md5 := util.BytesMD5(data)
	cached, err := h.cache.Get(ctx, md5)
	if err != nil {
		util.Logger.Warn("failed to get cache", zap.String("md5", md5), zap.Error(err))
	}
	if cached != nil {
		util.Logger.Info("cache hit", zap.String("md5", md5))
		return cached, nil
	}

	res, err := h.remover.Remove(ctx, data)
	if err != nil {
		return nil, err
	}

	if err := h.cache.Set(ctx, md5, res.PNG); err != nil {
		util.Logger.Warn("failed to set cache", zap.String("md5", md5), zap.Error(err))
	}
	return res.PNG, nil
}

// RemoveBackgroundBatch 批量去背景，只接受 multipart 的 images 字段
func (h *VisionHandler) RemoveBackgroundBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		if middleware.IsTooLarge(err) {
			tooLarge(c)
			return
		}
		badRequest(c, "No image files provided", err)
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		badRequest(c, "No image files provided", nil)
		return
	}

	images := make([][]byte, 0, len(files))
	for _, fh := range files {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			fail(c, "failed to read uploaded file", err)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			fail(c, "failed to read uploaded file", err)
			return
		}
		images = append(images, data)
	}
	if len(images) == 0 {
		badRequest(c, "No valid files provided", nil)
		return
	}

	format := c.DefaultPostForm("format", model.FormatBase64)
	if format != model.FormatBase64 && format != model.FormatBytes {
		badRequest(c, `format must be "base64" or "bytes" for batch processing`, nil)
		return
	}
	includeInfo := parseBool(c.DefaultPostForm("include_info", "false"))

	util.Logger.Info("batch remove background",
		zap.Int("images", len(images)), zap.String("format", format))

	results := h.remover.RemoveBatch(c.Request.Context(), images)

	items := make([]model.BatchItem, len(results))
	for i, r := range results {
		item := model.BatchItem{Index: r.Index, ID: r.ID, Success: r.Success, Error: r.Error}
		if r.Success {
			item.Image = encodeImage(r.Image, format)
			item.OriginalFormat = util.DetectFormat(images[r.Index])
			if includeInfo {
				if info, err := util.Inspect(images[r.Index]); err == nil {
					item.ImageInfo = info
				}
			}
		}
		items[i] = item
	}

	c.JSON(http.StatusOK, model.BatchResponse{
		Success:        true,
		Results:        items,
		TotalProcessed: len(images),
		Format:         format,
	})
}

// Compare 按与目标图片的相似度排序候选图片
func (h *VisionHandler) Compare(c *gin.Context) {
	target, candidates, ok := readCompareRequest(c)
	if !ok {
		return
	}

	scores, err := h.comparer.Compare(c.Request.Context(), target, candidates)
	if err != nil {
		fail(c, "failed to compare images", err)
		return
	}

	c.JSON(http.StatusOK, model.CompareResponse{
		Success:          true,
		Results:          scores,
		TotalComparisons: len(candidates),
	})
}

// BestMatch 只返回最相似的一张
func (h *VisionHandler) BestMatch(c *gin.Context) {
	target, candidates, ok := readCompareRequest(c)
	if !ok {
		return
	}

	scores, err := h.comparer.Compare(c.Request.Context(), target, candidates)
	if err != nil {
		fail(c, "failed to compare images", err)
		return
	}

	c.JSON(http.StatusOK, model.BestMatchResponse{
		Success:          true,
		BestMatch:        similarity.Best(scores),
		TotalComparisons: len(candidates),
	})
}

// ImageInfo 只读取图片信息，不做处理
func (h *VisionHandler) ImageInfo(c *gin.Context) {
	req, ok := readImageRequest(c)
	if !ok {
		return
	}

	info, err := util.Inspect(req.Image)
	if err != nil {
		fail(c, "failed to read image info", err)
		return
	}

	c.JSON(http.StatusOK, model.ImageInfoResponse{Success: true, ImageInfo: info})
}

// Grade 识别 CGC 评级漫画
func (h *VisionHandler) Grade(c *gin.Context) {
	req, ok := readImageRequest(c)
	if !ok {
		return
	}

	report, err := h.grader.Grade(c.Request.Context(), req.Image)
	if err != nil {
		fail(c, "failed to grade image", err)
		return
	}

	c.JSON(http.StatusOK, model.GradeResponse{Success: true, Result: report})
}

// readImageRequest 从 multipart 的 image 字段或 JSON 请求体读取单张图片
// 失败时已写入响应
func readImageRequest(c *gin.Context) (*model.ImageRequest, bool) {
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		fh, err := c.FormFile("image")
		if err != nil {
			if middleware.IsTooLarge(err) {
				tooLarge(c)
				return nil, false
			}
			badRequest(c, "No image file provided", err)
			return nil, false
		}
		if fh.Filename == "" {
			badRequest(c, "No file selected", nil)
			return nil, false
		}

		f, err := fh.Open()
		if err != nil {
			fail(c, "failed to read uploaded file", err)
			return nil, false
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			fail(c, "failed to read uploaded file", err)
			return nil, false
		}

		return &model.ImageRequest{
			Image:       data,
			Format:      c.DefaultPostForm("format", model.FormatBase64),
			IncludeInfo: parseBool(c.DefaultPostForm("include_info", "false")),
		}, true
	}

	var req model.ImageRequest
	if err := bindJSON(c, &req); err != nil {
		return nil, false
	}
	if len(req.Image) == 0 {
		badRequest(c, "image is required", nil)
		return nil, false
	}
	return &req, true
}

func readCompareRequest(c *gin.Context) ([]byte, [][]byte, bool) {
	var req model.CompareRequest
	if err := bindJSON(c, &req); err != nil {
		return nil, nil, false
	}
	if len(req.TargetImage) == 0 {
		badRequest(c, "target_image is required", nil)
		return nil, nil, false
	}
	if len(req.ComparisonImages) == 0 {
		badRequest(c, similarity.ErrNoCandidates.Error(), nil)
		return nil, nil, false
	}

	candidates := make([][]byte, len(req.ComparisonImages))
	for i, img := range req.ComparisonImages {
		candidates[i] = img
	}
	return req.TargetImage, candidates, true
}

// bindJSON 解析失败时写入 400/413 响应
func bindJSON(c *gin.Context, obj any) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if middleware.IsTooLarge(err) {
			tooLarge(c)
			return err
		}
		badRequest(c, "failed to read request body", err)
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		err = errors.New("empty body")
		badRequest(c, "No JSON data provided", err)
		return err
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err := c.ShouldBindJSON(obj); err != nil {
		badRequest(c, "Invalid input", err)
		return err
	}
	return nil
}

func encodeImage(png []byte, format string) any {
	if format == model.FormatBytes {
		return model.ByteList(png)
	}
	return base64.StdEncoding.EncodeToString(png)
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

func badRequest(c *gin.Context, message string, err error) {
	resp := model.ErrorResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	util.Logger.Warn("bad request", zap.String("path", c.FullPath()), zap.String("message", message), zap.Error(err))
	c.JSON(http.StatusBadRequest, resp)
}

func tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{
		Success: false,
		Message: middleware.TooLargeMessage,
	})
}

// fail 非法图片返回 400，其余返回 500
func fail(c *gin.Context, message string, err error) {
	var invalid *util.InvalidImageError
	if errors.As(err, &invalid) || errors.Is(err, similarity.ErrNoCandidates) {
		badRequest(c, "Invalid input", err)
		return
	}

	util.Logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, model.ErrorResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}
