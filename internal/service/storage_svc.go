package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"shopfront_api_202610/internal/config"
	"shopfront_api_202610/pkg/utils"
)

//go:generate mockgen -destination=mock_storage.go -package=service . MediaStore

// ==================== 接口定义 ====================

// UploadResult 上传结果
type UploadResult struct {
	URL      string
	PublicID string
}

// MediaStore 媒体存储接口
type MediaStore interface {
	// Upload 上传图片到 folder，返回公开 URL 与删除用的标识
	Upload(ctx context.Context, data []byte, filename, folder string) (*UploadResult, error)

	// Delete 按标识删除
	Delete(ctx context.Context, publicID string) error

	// PublicIDFromURL 从已存储的 URL 反推删除标识，无法解析时返回 false
	PublicIDFromURL(rawURL string) (string, bool)
}

// ==================== 工厂方法 ====================

// NewMediaStore 按配置选择存储提供者
func NewMediaStore(cfg config.MediaConfig) (MediaStore, error) {
	switch cfg.Provider {
	case "cloudinary":
		return NewCloudinaryStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "local":
		return NewLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== Cloudinary 实现 ====================

type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cfg config.MediaConfig) (*CloudinaryStorage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary 配置不完整")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("初始化 Cloudinary 失败: %w", err)
	}
	cld.Upload.Config.API.UploadTimeout = 60
	return &CloudinaryStorage{cld: cld}, nil
}

func (s *CloudinaryStorage) Upload(ctx context.Context, data []byte, filename, folder string) (*UploadResult, error) {
	resp, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return nil, fmt.Errorf("上传 Cloudinary 失败 (%s): %w", filename, err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("上传 Cloudinary 失败 (%s): %s", filename, resp.Error.Message)
	}

	imageURL := resp.SecureURL
	if imageURL == "" {
		imageURL = resp.URL
	}
	return &UploadResult{URL: imageURL, PublicID: resp.PublicID}, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("删除 Cloudinary 图片失败: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("删除 Cloudinary 图片失败: %s", resp.Error.Message)
	}
	// "not found" 视为已删除
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("删除 Cloudinary 图片失败: %s", resp.Result)
	}
	return nil
}

// cloudinaryVersion 形如 v1712345678 的版本段
var cloudinaryVersion = regexp.MustCompile(`^v\d+$`)

// PublicIDFromURL https://res.cloudinary.com/<cloud>/image/upload/v123/products/abc.jpg -> products/abc
func (s *CloudinaryStorage) PublicIDFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	const marker = "/upload/"
	idx := strings.Index(u.Path, marker)
	if idx < 0 {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path[idx+len(marker):], "/"), "/")
	if len(segments) > 0 && cloudinaryVersion.MatchString(segments[0]) {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return "", false
	}

	last := segments[len(segments)-1]
	segments[len(segments)-1] = strings.TrimSuffix(last, path.Ext(last))
	publicID := strings.Join(segments, "/")
	if publicID == "" || strings.HasSuffix(publicID, "/") {
		return "", false
	}
	return publicID, true
}

// ==================== S3 实现 ====================

type S3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	cdnDomain string
}

func NewS3Storage(cfg config.MediaConfig) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.APIKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.APIKey, cfg.APISecret, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %w", err)
	}

	// 自定义端点用于 S3 兼容存储（MinIO、COS 等）
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		cdnDomain: cfg.CDNDomain,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, data []byte, filename, folder string) (*UploadResult, error) {
	contentType := utils.DetectImageType(data, filename)
	key := generateKey(folder, utils.ImageExt(contentType, filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("上传S3失败: %w", err)
	}

	return &UploadResult{URL: s.publicURL(key), PublicID: key}, nil
}

func (s *S3Storage) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("删除S3对象失败: %w", err)
	}
	return nil
}

func (s *S3Storage) PublicIDFromURL(rawURL string) (string, bool) {
	var prefix string
	if s.cdnDomain != "" && strings.HasPrefix(rawURL, fmt.Sprintf("https://%s/", s.cdnDomain)) {
		prefix = fmt.Sprintf("https://%s/", s.cdnDomain)
	} else {
		prefix = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	}

	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, prefix)
	return key, key != ""
}

func (s *S3Storage) publicURL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// ==================== 本地存储 (开发测试用) ====================

type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(cfg config.MediaConfig) (*LocalStorage, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "./uploads"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8080/uploads"
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, data []byte, filename, folder string) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contentType := utils.DetectImageType(data, filename)
	key := generateKey(folder, utils.ImageExt(contentType, filename))

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("创建目录失败: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("写入文件失败: %w", err)
	}

	return &UploadResult{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, publicID string) error {
	if strings.Contains(publicID, "..") {
		return fmt.Errorf("非法路径: %s", publicID)
	}
	err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(publicID)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStorage) PublicIDFromURL(rawURL string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, prefix)
	return key, key != ""
}

// Dir 本地文件根目录，供静态文件路由使用
func (s *LocalStorage) Dir() string {
	return s.basePath
}

// ==================== 工具函数 ====================

// generateKey folder/2006/01/02/<uuid>.ext
func generateKey(folder, ext string) string {
	name := uuid.New().String() + ext
	datePath := time.Now().Format("2006/01/02")
	if folder != "" {
		return fmt.Sprintf("%s/%s/%s", strings.Trim(folder, "/"), datePath, name)
	}
	return fmt.Sprintf("%s/%s", datePath, name)
}
