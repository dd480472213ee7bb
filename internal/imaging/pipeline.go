// Package imaging is the in-process image backend used when no image
// functions are deployed. Uploads are decoded, resized to the standard
// rendition widths and written to S3 under a content-addressed prefix.
package imaging

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/kitchenkin/recipes/backend/config"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

const (
	// WebPQuality is used for every generated rendition
	WebPQuality = 82

	SmallWidth  = 320
	MediumWidth = 768
	LargeWidth  = 1280
)

// ErrUnsupportedImage is returned when the upload cannot be decoded
var ErrUnsupportedImage = errors.New("unsupported image data")

// objectStore is the subset of the S3 API the pipeline needs
type objectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Pipeline ingests and removes recipe pictures in an S3 bucket
type Pipeline struct {
	store  objectStore
	bucket string
	url    func(key string) string
}

// NewPipeline creates a pipeline writing to the configured bucket
func NewPipeline(cfg *config.S3Config) *Pipeline {
	return &Pipeline{
		store:  cfg.Client,
		bucket: cfg.BucketName,
		url:    cfg.PublicURL,
	}
}

type rendition struct {
	name string
	data []byte
}

// Ingest stores the original upload plus an optimized WebP and three
// resized renditions, returning their public URLs
func (p *Pipeline) Ingest(ctx context.Context, in *types.ImageInput) (*types.ImageRenditions, error) {
	raw, err := base64.StdEncoding.DecodeString(in.Encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}

	sum := sha256.Sum256(raw)
	contentID := hex.EncodeToString(sum[:])

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if isHEIF(in.FileType, raw) {
			return p.storeOriginalOnly(ctx, contentID, raw, in.FileType)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	originalKey := fmt.Sprintf("%s/original.%s", contentID, extensionFor(format, in.FileType))
	if err := p.put(ctx, originalKey, raw, in.FileType); err != nil {
		return nil, err
	}

	widths := []struct {
		name  string
		width int
	}{
		{"optimized", 0},
		{"small", SmallWidth},
		{"medium", MediumWidth},
		{"large", LargeWidth},
	}

	out := make([]rendition, 0, len(widths))
	for _, w := range widths {
		img := src
		if w.width > 0 {
			img = resizeToWidth(src, w.width)
		}
		data, err := encodeWebP(img, WebPQuality)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s rendition: %w", w.name, err)
		}
		out = append(out, rendition{name: w.name, data: data})
	}

	for _, r := range out {
		if err := p.put(ctx, renditionKey(contentID, r.name), r.data, "image/webp"); err != nil {
			return nil, err
		}
	}

	log.Printf("[ImagePipeline] Stored %s (%s, %d bytes)", contentID, format, len(raw))

	return &types.ImageRenditions{
		ContentID: contentID,
		Original:  p.url(originalKey),
		Optimized: p.url(renditionKey(contentID, "optimized")),
		Small:     p.url(renditionKey(contentID, "small")),
		Medium:    p.url(renditionKey(contentID, "medium")),
		Large:     p.url(renditionKey(contentID, "large")),
	}, nil
}

// storeOriginalOnly keeps an upload there is no decoder for. Every
// rendition points at the original.
func (p *Pipeline) storeOriginalOnly(ctx context.Context, contentID string, raw []byte, fileType string) (*types.ImageRenditions, error) {
	key := fmt.Sprintf("%s/original.%s", contentID, extensionFor("", fileType))
	if err := p.put(ctx, key, raw, fileType); err != nil {
		return nil, err
	}

	log.Printf("[ImagePipeline] Stored %s as original only (%s, %d bytes)", contentID, fileType, len(raw))

	url := p.url(key)
	return &types.ImageRenditions{
		ContentID: contentID,
		Original:  url,
		Optimized: url,
		Small:     url,
		Medium:    url,
		Large:     url,
	}, nil
}

// isHEIF reports whether the upload is declared as HEIC/HEIF and starts
// with an ISO BMFF ftyp box
func isHEIF(fileType string, raw []byte) bool {
	switch fileType {
	case "image/heic", "image/heif":
	default:
		return false
	}
	return len(raw) >= 12 && string(raw[4:8]) == "ftyp"
}

// Remove deletes every object stored under the content id. Missing objects
// are not an error.
func (p *Pipeline) Remove(ctx context.Context, contentID string) error {
	if contentID == "" || strings.Contains(contentID, "/") {
		return fmt.Errorf("invalid content id %q", contentID)
	}

	listed, err := p.store.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(contentID + "/"),
	})
	if err != nil {
		return fmt.Errorf("failed to list image objects: %w", err)
	}
	if len(listed.Contents) == 0 {
		return nil
	}

	ids := make([]s3types.ObjectIdentifier, 0, len(listed.Contents))
	for _, obj := range listed.Contents {
		ids = append(ids, s3types.ObjectIdentifier{Key: obj.Key})
	}

	if _, err := p.store.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(p.bucket),
		Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	}); err != nil {
		return fmt.Errorf("failed to delete image objects: %w", err)
	}

	log.Printf("[ImagePipeline] Removed %d objects for %s", len(ids), contentID)
	return nil
}

func (p *Pipeline) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := p.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func renditionKey(contentID, name string) string {
	return contentID + "/" + name + ".webp"
}

func extensionFor(format, fileType string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "png", "webp":
		return format
	}
	if i := strings.Index(fileType, "/"); i >= 0 {
		return fileType[i+1:]
	}
	return "bin"
}

// resizeToWidth scales down to the given width keeping the aspect ratio.
// Images already narrower are returned as is.
func resizeToWidth(src image.Image, width int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || w <= width {
		return src
	}

	height := int(float64(h) * float64(width) / float64(w))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
