package handlers

import (
	"context"
	"mime/multipart"
	"net/url"
	"strconv"
	"time"

	config "github.com/anjiri1684/study_hub/configs"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	profileFolder  = "study_hub_profiles"
	materialFolder = "study_hub_materials"
)

type StoredFile struct {
	URL      string
	PublicID string
}

// FileStore keeps uploaded study materials.
type FileStore interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (StoredFile, error)
	Delete(ctx context.Context, publicID string) error
}

type cloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func (s *cloudinaryStore) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (StoredFile, error) {
	f, err := file.Open()
	if err != nil {
		return StoredFile{}, errors.Wrap(err, "open upload")
	}
	defer f.Close()

	res, err := s.cld.Upload.Upload(ctx, f, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "auto",
	})
	if err != nil {
		return StoredFile{}, errors.Wrap(err, "cloudinary upload")
	}
	if res.Error.Message != "" {
		return StoredFile{}, errors.New(res.Error.Message)
	}
	return StoredFile{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (s *cloudinaryStore) Delete(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return errors.Wrap(err, "cloudinary destroy")
}

// Files is nil until InitFileStore succeeds; material uploads are refused without it.
var Files FileStore

func InitFileStore(cfg *config.Config) {
	if cfg.CloudinaryURL == "" {
		log.Warn().Msg("CLOUDINARY_URL not set, material uploads disabled")
		return
	}
	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize Cloudinary")
		return
	}
	Files = &cloudinaryStore{cld: cld}
}

// GenerateUploadSignature creates a signature the frontend uses to upload
// profile pictures straight to Cloudinary.
func GenerateUploadSignature(c *fiber.Ctx) error {
	cloudinaryURL := config.App.CloudinaryURL
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return respondError(c, errors.Wrap(err, "initialize cloudinary"))
	}

	parsedURL, err := url.Parse(cloudinaryURL)
	if err != nil {
		return respondError(c, errors.Wrap(err, "parse cloudinary url"))
	}
	secret, _ := parsedURL.User.Password()

	paramsToSign, err := api.StructToParams(uploader.UploadParams{
		Folder: profileFolder,
	})
	if err != nil {
		return respondError(c, errors.Wrap(err, "prepare signature params"))
	}

	timestamp := time.Now().Unix()
	paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(paramsToSign, secret)
	if err != nil {
		return respondError(c, errors.Wrap(err, "sign upload params"))
	}

	return c.JSON(fiber.Map{
		"signature": signature,
		"timestamp": timestamp,
		"apiKey":    cld.Config.Cloud.APIKey,
		"cloudName": cld.Config.Cloud.CloudName,
		"folder":    profileFolder,
	})
}
