package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streetsight/streetsight/internal/app"
	"github.com/streetsight/streetsight/internal/classifier"
)

func getApp(c *gin.Context) *app.App {
	return c.MustGet("app").(*app.App)
}

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Street Infrastructure Classifier API",
		"status":  "running",
	})
}

// GetHealth reports model readiness alongside the class catalog so clients
// can probe the service before uploading anything.
func GetHealth(c *gin.Context) {
	a := getApp(c)

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"model":      a.Model().Status(),
		"classes":    classifier.Labels(),
		"image_size": a.Config().ImageSize,
	})
}

func GetClasses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"classes": classifier.Catalog(),
	})
}

// PredictImage classifies a single uploaded image. The multipart field name
// is "file", matching the reference clients.
func PredictImage(c *gin.Context) {
	a := getApp(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "no image file provided, use 'file' as the form field name",
		})
		return
	}

	raw, err := readFileContent(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("failed to read file: %v", err),
		})
		return
	}

	result := a.Classifier().ClassifyOne(c.Request.Context(), raw)
	if !result.Success {
		c.JSON(statusFor(result.Cause()), result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PredictBatch classifies up to the configured maximum of images submitted
// under the multipart field name "files". One bad image fails only its own
// slot; an oversized batch is rejected before any inference runs.
func PredictBatch(c *gin.Context) {
	a := getApp(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("failed to parse form: %v", err),
		})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "no image files provided, use 'files' as the form field name",
		})
		return
	}

	if len(files) > a.Classifier().MaxBatch() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"success": false,
			"error":   fmt.Sprintf("batch of %d exceeds the maximum of %d images", len(files), a.Classifier().MaxBatch()),
		})
		return
	}

	// The whole batch shares one model; surface unavailability as a single
	// 503 instead of repeating it in every slot.
	if err := a.Model().EnsureReady(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	items := make([][]byte, len(files))
	for i, file := range files {
		raw, err := readFileContent(file)
		if err != nil {
			// Leave the slot empty; the pipeline records the failure in place.
			continue
		}
		items[i] = raw
	}

	results, err := a.Classifier().ClassifyBatch(c.Request.Context(), items)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, classifier.ErrBatchTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	processed := 0
	for i := range results {
		results[i].Filename = files[i].Filename
		if results[i].Success {
			processed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     len(results),
		"processed": processed,
		"results":   results,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, classifier.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, classifier.ErrUndecodable), errors.Is(err, classifier.ErrInvalidDimensions):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func readFileContent(file *multipart.FileHeader) ([]byte, error) {
	content, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer content.Close()

	return io.ReadAll(content)
}
