package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	Timeout   time.Duration
}

// Service stores files in Cloudinary.
type Service struct {
	client  *cloudinary.Cloudinary
	folder  string
	timeout time.Duration
	logger  zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Service{
		client:  cld,
		folder:  strings.Trim(cfg.Folder, "/"),
		timeout: timeout,
		logger:  logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload stores reader at destination and returns the secure URL. onProgress
// receives 0..100 as the body is consumed, and 100 once the asset is stored.
func (s *Service) Upload(ctx context.Context, destination string, reader io.Reader, size int64, onProgress func(percent int)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if onProgress == nil {
		onProgress = func(int) {}
	}
	onProgress(0)

	params := uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     PublicID(destination),
		ResourceType: "auto",
	}

	body := &progressReader{reader: reader, total: size, report: onProgress, last: 0}
	result, err := s.client.Upload.Upload(ctx, body, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload asset: %s", result.Error.Message)
	}

	onProgress(100)
	s.logger.Info().Str("public_id", result.PublicID).Int("bytes", result.Bytes).Msg("file uploaded to cloudinary")

	return result.SecureURL, nil
}

// PublicID drops the extension of a slash-separated destination path.
// Cloudinary derives the format from the content.
func PublicID(destination string) string {
	cleaned := strings.Trim(path.Clean("/"+destination), "/")
	return strings.TrimSuffix(cleaned, path.Ext(cleaned))
}

type progressReader struct {
	reader io.Reader
	total  int64
	read   int64
	last   int
	report func(int)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 && p.total > 0 {
		p.read += int64(n)
		percent := int(p.read * 100 / p.total)
		if percent > 99 {
			// 100 is reported once the asset is stored.
			percent = 99
		}
		if percent > p.last {
			p.last = percent
			p.report(percent)
		}
	}
	return n, err
}
